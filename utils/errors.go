package utils

import "errors"

var ErrorServer = errors.New("there was a problem processing the request")
var ErrorValidationError = errors.New("the data provided was invalid")
var ErrorInvalidSlug = errors.New("slugs may only contain lowercase letters, digits and inner hyphens")
var ErrorInvalidCredentials = errors.New("the credentials provided were invalid")
var ErrorGoogleOnlyAccount = errors.New("this account signs in with Google")
var ErrorUnauthorized = errors.New("authentication is required")
var ErrorTokenInvalid = errors.New("the session token is invalid or expired")
var ErrorForbidden = errors.New("no access to the requested resource")
var ErrorNotFound = errors.New("the requested resource was not found")
var ErrorUserNotFound = errors.New("the specified user was not found")
var ErrorUserExists = errors.New("a user with this email or username already exists")
var ErrorCollectionExists = errors.New("a collection with this slug already exists")
var ErrorDuplicateItem = errors.New("the item is already part of the collection")
var ErrorSelfGrant = errors.New("the owner already has access to the collection")
var ErrorOwnerLike = errors.New("the owner cannot like their own collection")
var ErrorProfilePrivate = errors.New("the profile collection cannot be made private")
var ErrorTooManyRequests = errors.New("too many attempts, try again later")
var ErrorGoogleAuthRequired = errors.New("a linked Google account is required for this action")
var ErrorGoogleQuotaExceeded = errors.New("the YouTube API quota is exhausted")
var ErrorGoogleUnavailable = errors.New("the YouTube API could not be reached")
var ErrorOpenIDError = errors.New("google sign-in failed")
