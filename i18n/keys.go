// Package i18n holds the typed message catalogs for the portal page chrome.
package i18n

// Key identifies a translatable message.
type Key int

const (
	NavHome Key = iota
	NavDownload
	NavResearch
	NavProfile
	NavAdmin
	NavLogin
	NavLogout
	NavLanguage

	FooterPrivacy
	FooterTerms
	FooterCookie

	HomeTitle
	HomeTagline
	HomeCTA

	DownloadTitle
	DownloadVersion
	DownloadSize
	DownloadButton
	DownloadChangelog
	DownloadFallbackNotice

	AuthTitleLogin
	AuthTitleRegister
	AuthSwitchToRegister
	AuthSwitchToLogin
	AuthMethodPassword
	AuthMethodPhoneOTP
	AuthMethodEmailOTP
	AuthMethodPhone
	AuthMethodEmail
	AuthFieldEmail
	AuthFieldPhone
	AuthFieldPassword
	AuthFieldUsername
	AuthFieldCode
	AuthSubmit
	AuthSendCode
	AuthVerify
	AuthResend
	AuthResendIn
	AuthBack
	AuthForgotPassword

	ResearchTitle
	ResearchEmpty
	ResearchViews
	ResearchPublishedAt

	ProfileTitle
	ProfileSubscriptionActive
	ProfileSubscriptionExpired
	ProfileSubscriptionNone
	ProfilePurchases
	ProfilePurchasesEmpty
	ProfileUsername
	ProfileBio
	ProfileSave
	ProfileSaved
	ProfileNewPassword
	ProfileChangePassword
	ProfilePasswordChanged
	ProfileBuy

	AdminTitle
	AdminNewArticle
	AdminFilterAll
	AdminFilterPublished
	AdminFilterDrafts
	AdminFieldTitle
	AdminFieldSlug
	AdminFieldContent
	AdminFieldExcerpt
	AdminFieldCategory
	AdminFieldCover
	AdminFieldPublished
	AdminCreate
	AdminPublish
	AdminUnpublish
	AdminDelete
	AdminUploadCover
	AdminEmpty
	AdminSaved

	ResetTitle
	ResetRequest
	ResetRequestSent
	ResetNewPassword
	ResetSave
	ResetDone

	PrivacyTitle
	TermsTitle
	CookieTitle

	NotFoundTitle
	NotFoundBody
	NotFoundBack

	ErrorGeneric

	numKeys
)

var keyNames = [numKeys]string{
	NavHome:     "nav_home",
	NavDownload: "nav_download",
	NavResearch: "nav_research",
	NavProfile:  "nav_profile",
	NavAdmin:    "nav_admin",
	NavLogin:    "nav_login",
	NavLogout:   "nav_logout",
	NavLanguage: "nav_language",

	FooterPrivacy: "footer_privacy",
	FooterTerms:   "footer_terms",
	FooterCookie:  "footer_cookie",

	HomeTitle:   "home_title",
	HomeTagline: "home_tagline",
	HomeCTA:     "home_cta",

	DownloadTitle:          "download_title",
	DownloadVersion:        "download_version",
	DownloadSize:           "download_size",
	DownloadButton:         "download_button",
	DownloadChangelog:      "download_changelog",
	DownloadFallbackNotice: "download_fallback_notice",

	AuthTitleLogin:       "auth_title_login",
	AuthTitleRegister:    "auth_title_register",
	AuthSwitchToRegister: "auth_switch_to_register",
	AuthSwitchToLogin:    "auth_switch_to_login",
	AuthMethodPassword:   "auth_method_password",
	AuthMethodPhoneOTP:   "auth_method_phone_otp",
	AuthMethodEmailOTP:   "auth_method_email_otp",
	AuthMethodPhone:      "auth_method_phone",
	AuthMethodEmail:      "auth_method_email",
	AuthFieldEmail:       "auth_field_email",
	AuthFieldPhone:       "auth_field_phone",
	AuthFieldPassword:    "auth_field_password",
	AuthFieldUsername:    "auth_field_username",
	AuthFieldCode:        "auth_field_code",
	AuthSubmit:           "auth_submit",
	AuthSendCode:         "auth_send_code",
	AuthVerify:           "auth_verify",
	AuthResend:           "auth_resend",
	AuthResendIn:         "auth_resend_in",
	AuthBack:             "auth_back",
	AuthForgotPassword:   "auth_forgot_password",

	ResearchTitle:       "research_title",
	ResearchEmpty:       "research_empty",
	ResearchViews:       "research_views",
	ResearchPublishedAt: "research_published_at",

	ProfileTitle:               "profile_title",
	ProfileSubscriptionActive:  "profile_subscription_active",
	ProfileSubscriptionExpired: "profile_subscription_expired",
	ProfileSubscriptionNone:    "profile_subscription_none",
	ProfilePurchases:           "profile_purchases",
	ProfilePurchasesEmpty:      "profile_purchases_empty",
	ProfileUsername:            "profile_username",
	ProfileBio:                 "profile_bio",
	ProfileSave:                "profile_save",
	ProfileSaved:               "profile_saved",
	ProfileNewPassword:         "profile_new_password",
	ProfileChangePassword:      "profile_change_password",
	ProfilePasswordChanged:     "profile_password_changed",
	ProfileBuy:                 "profile_buy",

	AdminTitle:           "admin_title",
	AdminNewArticle:      "admin_new_article",
	AdminFilterAll:       "admin_filter_all",
	AdminFilterPublished: "admin_filter_published",
	AdminFilterDrafts:    "admin_filter_drafts",
	AdminFieldTitle:      "admin_field_title",
	AdminFieldSlug:       "admin_field_slug",
	AdminFieldContent:    "admin_field_content",
	AdminFieldExcerpt:    "admin_field_excerpt",
	AdminFieldCategory:   "admin_field_category",
	AdminFieldCover:      "admin_field_cover",
	AdminFieldPublished:  "admin_field_published",
	AdminCreate:          "admin_create",
	AdminPublish:         "admin_publish",
	AdminUnpublish:       "admin_unpublish",
	AdminDelete:          "admin_delete",
	AdminUploadCover:     "admin_upload_cover",
	AdminEmpty:           "admin_empty",
	AdminSaved:           "admin_saved",

	ResetTitle:       "reset_title",
	ResetRequest:     "reset_request",
	ResetRequestSent: "reset_request_sent",
	ResetNewPassword: "reset_new_password",
	ResetSave:        "reset_save",
	ResetDone:        "reset_done",

	PrivacyTitle: "privacy_title",
	TermsTitle:   "terms_title",
	CookieTitle:  "cookie_title",

	NotFoundTitle: "not_found_title",
	NotFoundBody:  "not_found_body",
	NotFoundBack:  "not_found_back",

	ErrorGeneric: "error_generic",
}

// Name is the stable identifier used by templates.
func (k Key) Name() string {
	if k < 0 || k >= numKeys {
		return ""
	}
	return keyNames[k]
}

// Keys returns every defined key in declaration order.
func Keys() []Key {
	out := make([]Key, 0, numKeys)
	for k := Key(0); k < numKeys; k++ {
		out = append(out, k)
	}
	return out
}
