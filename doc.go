// Package portal holds the customer portal core: input validation, the
// multi-method authentication flow, the session context that tracks the
// signed in identity and administrator flag, and the article service used by
// the admin CMS.
//
// Everything that persists lives in the hosted backend. The credential
// exchange is consumed through the CredentialExchange and SessionSource
// interfaces (see package hosted for the HTTP implementation) and relational
// rows through the bun repositories in this package.
//
// A login attempt walks the following steps:
//
//	method_select --choose--> input --submit--> otp --code--> done
//	                            \------------(password)-------/
//
// The resend cooldown is kept on the attempt as a deadline measured against
// the injected clock, so a restored attempt reports the same remaining time.
package portal
