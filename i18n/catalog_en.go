package i18n

var enCatalog = Catalog{
	NavHome:     "Home",
	NavDownload: "Download",
	NavResearch: "Research",
	NavProfile:  "Profile",
	NavAdmin:    "Admin",
	NavLogin:    "Sign in",
	NavLogout:   "Sign out",
	NavLanguage: "Language",

	FooterPrivacy: "Privacy Policy",
	FooterTerms:   "Terms of Service",
	FooterCookie:  "Cookie Policy",

	HomeTitle:   "Secure, stable, fast connections",
	HomeTagline: "Reach global nodes in one tap, wherever you are",
	HomeCTA:     "Download now",

	DownloadTitle:          "Download the client",
	DownloadVersion:        "Version",
	DownloadSize:           "Size",
	DownloadButton:         "Download",
	DownloadChangelog:      "Changelog",
	DownloadFallbackNotice: "Latest release info is unavailable, showing default versions",

	AuthTitleLogin:       "Sign in",
	AuthTitleRegister:    "Create account",
	AuthSwitchToRegister: "No account? Register",
	AuthSwitchToLogin:    "Have an account? Sign in",
	AuthMethodPassword:   "Password",
	AuthMethodPhoneOTP:   "Phone code",
	AuthMethodEmailOTP:   "Email code",
	AuthMethodPhone:      "Phone",
	AuthMethodEmail:      "Email",
	AuthFieldEmail:       "Email",
	AuthFieldPhone:       "Phone number",
	AuthFieldPassword:    "Password",
	AuthFieldUsername:    "Username",
	AuthFieldCode:        "Verification code",
	AuthSubmit:           "Sign in",
	AuthSendCode:         "Send code",
	AuthVerify:           "Verify",
	AuthResend:           "Resend",
	AuthResendIn:         "Resend in %ds",
	AuthBack:             "Back",
	AuthForgotPassword:   "Forgot password?",

	ResearchTitle:       "Research",
	ResearchEmpty:       "No articles yet",
	ResearchViews:       "views",
	ResearchPublishedAt: "Published",

	ProfileTitle:               "Profile",
	ProfileSubscriptionActive:  "Subscription active until %s",
	ProfileSubscriptionExpired: "Subscription expired",
	ProfileSubscriptionNone:    "No subscription",
	ProfilePurchases:           "Purchases",
	ProfilePurchasesEmpty:      "No purchases yet",
	ProfileUsername:            "Username",
	ProfileBio:                 "Bio",
	ProfileSave:                "Save",
	ProfileSaved:               "Profile saved",
	ProfileNewPassword:         "New password",
	ProfileChangePassword:      "Change password",
	ProfilePasswordChanged:     "Password changed",
	ProfileBuy:                 "Buy subscription",

	AdminTitle:           "Articles",
	AdminNewArticle:      "New article",
	AdminFilterAll:       "All",
	AdminFilterPublished: "Published",
	AdminFilterDrafts:    "Drafts",
	AdminFieldTitle:      "Title",
	AdminFieldSlug:       "Slug",
	AdminFieldContent:    "Content",
	AdminFieldExcerpt:    "Excerpt",
	AdminFieldCategory:   "Category",
	AdminFieldCover:      "Cover image",
	AdminFieldPublished:  "Publish now",
	AdminCreate:          "Create",
	AdminPublish:         "Publish",
	AdminUnpublish:       "Unpublish",
	AdminDelete:          "Delete",
	AdminUploadCover:     "Upload cover",
	AdminEmpty:           "No articles yet",
	AdminSaved:           "Article saved",

	ResetTitle:       "Reset password",
	ResetRequest:     "Send reset email",
	ResetRequestSent: "Reset email sent, check your inbox",
	ResetNewPassword: "New password",
	ResetSave:        "Save new password",
	ResetDone:        "Password reset, please sign in again",

	PrivacyTitle: "Privacy Policy",
	TermsTitle:   "Terms of Service",
	CookieTitle:  "Cookie Policy",

	NotFoundTitle: "Page not found",
	NotFoundBody:  "The page you are looking for does not exist or was removed",
	NotFoundBack:  "Back to home",

	ErrorGeneric: "Something went wrong, please try again",
}
