package common

// AuthorizationHeaderName carries the bearer access token on HTTP requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the token in the Authorization header value.
const BearerPrefix = "Bearer "

// DefaultRecentLimit is how many task records the front-ends show by default.
const DefaultRecentLimit = 5
