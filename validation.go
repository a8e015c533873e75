package portal

import (
	"errors"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

const (
	MaxEmailLength    = 255
	MinPasswordLength = 6
	OTPLength         = 6
	MinUsernameLength = 2
	MaxUsernameLength = 50
	MaxTitleLength    = 200
	MaxSlugLength     = 100
	MaxContentLength  = 50000
	MaxExcerptLength  = 500
	MaxBioLength      = 500
)

const (
	msgEmailRequired    = "请输入邮箱地址"
	msgEmailInvalid     = "请输入有效的邮箱地址"
	msgEmailTooLong     = "邮箱地址不能超过255个字符"
	msgPhoneRequired    = "请输入手机号码"
	msgPhoneInvalid     = "请输入有效的手机号码"
	msgPasswordRequired = "请输入密码"
	msgPasswordShort    = "密码至少需要6个字符"
	msgCodeRequired     = "请输入验证码"
	msgCodeLength       = "验证码必须是6位"
	msgUsernameRequired = "请输入用户名"
	msgUsernameLength   = "用户名长度需在2到50个字符之间"
	msgTitleRequired    = "标题不能为空"
	msgTitleTooLong     = "标题不能超过200个字符"
	msgSlugRequired     = "URL别名不能为空"
	msgSlugTooLong      = "URL别名不能超过100个字符"
	msgContentRequired  = "内容不能为空"
	msgContentTooLong   = "内容不能超过50000个字符"
	msgExcerptTooLong   = "摘要不能超过500个字符"
	msgCategoryRequired = "请选择文章分类"
	msgCategoryInvalid  = "文章分类无效"
	msgCoverInvalid     = "封面图片链接无效"
	msgBioTooLong       = "个人简介不能超过500个字符"
	msgPasswordMismatch = "两次输入的密码不一致"
)

var phonePattern = regexp.MustCompile(`^\+?[1-9]\d{6,14}$`)

// FieldErrors maps a field name to a single human readable message.
type FieldErrors map[string]string

// Err returns nil when there are no field errors.
func (f FieldErrors) Err() error {
	if len(f) == 0 {
		return nil
	}
	return validationError(f)
}

func (f FieldErrors) add(field string, err error) {
	if err == nil {
		return
	}
	f[field] = err.Error()
}

// ValidateEmail checks the email shape and length.
func ValidateEmail(email string) error {
	return validation.Validate(strings.TrimSpace(email),
		validation.Required.Error(msgEmailRequired),
		validation.RuneLength(0, MaxEmailLength).Error(msgEmailTooLong),
		is.Email.Error(msgEmailInvalid),
	)
}

// ValidatePhone accepts an optional leading + and 7 to 15 digits not starting with 0.
func ValidatePhone(phone string) error {
	return validation.Validate(strings.TrimSpace(phone),
		validation.Required.Error(msgPhoneRequired),
		validation.Match(phonePattern).Error(msgPhoneInvalid),
	)
}

// ValidatePassword requires at least six characters.
func ValidatePassword(password string) error {
	return validation.Validate(password,
		validation.Required.Error(msgPasswordRequired),
		validation.RuneLength(MinPasswordLength, 0).Error(msgPasswordShort),
	)
}

// ValidateOTPCode requires exactly six characters.
func ValidateOTPCode(code string) error {
	return validation.Validate(strings.TrimSpace(code),
		validation.Required.Error(msgCodeRequired),
		validation.RuneLength(OTPLength, OTPLength).Error(msgCodeLength),
	)
}

// ValidateUsername requires 2 to 50 characters after trimming.
func ValidateUsername(username string) error {
	return validation.Validate(strings.TrimSpace(username),
		validation.Required.Error(msgUsernameRequired),
		validation.RuneLength(MinUsernameLength, MaxUsernameLength).Error(msgUsernameLength),
	)
}

// ValidateBio limits the profile bio length.
func ValidateBio(bio string) error {
	return validation.Validate(strings.TrimSpace(bio),
		validation.RuneLength(0, MaxBioLength).Error(msgBioTooLong),
	)
}

// ValidatePasswordConfirmation checks password and that confirm repeats it.
func ValidatePasswordConfirmation(password, confirm string) FieldErrors {
	fields := FieldErrors{}
	fields.add("password", ValidatePassword(password))
	if confirm != password {
		fields["confirm_password"] = msgPasswordMismatch
	}
	return fields
}

// ValidateContact validates value as the given contact kind.
func ValidateContact(kind ContactKind, value string) error {
	if kind == ContactPhone {
		return ValidatePhone(value)
	}
	return ValidateEmail(value)
}

// Credentials are the values typed into the input step.
type Credentials struct {
	Destination string `json:"destination" form:"destination"`
	Password    string `json:"password" form:"password"`
	Username    string `json:"username" form:"username"`
}

// Normalize trims whitespace and lower cases email destinations.
func (c Credentials) Normalize(kind ContactKind) Credentials {
	c.Destination = strings.TrimSpace(c.Destination)
	if kind == ContactEmail {
		c.Destination = strings.ToLower(c.Destination)
	} else {
		c.Destination = strings.NewReplacer(" ", "", "-", "").Replace(c.Destination)
	}
	c.Username = strings.TrimSpace(c.Username)
	return c
}

// ValidateCredentials checks the fields the method needs and returns the
// normalized bundle. Field keys are the contact kind, password and username.
func ValidateCredentials(purpose FlowPurpose, method Method, c Credentials) (Credentials, FieldErrors) {
	kind := method.Contact()
	c = c.Normalize(kind)

	fields := FieldErrors{}
	fields.add(string(kind), ValidateContact(kind, c.Destination))

	if method == MethodPassword {
		fields.add("password", ValidatePassword(c.Password))
	}
	if purpose == PurposeRegister {
		fields.add("username", ValidateUsername(c.Username))
	}
	return c, fields
}

// ArticleInput is the admin form payload for an article.
type ArticleInput struct {
	Title         string          `json:"title" form:"title"`
	Slug          string          `json:"slug" form:"slug"`
	Content       string          `json:"content" form:"content"`
	Excerpt       string          `json:"excerpt" form:"excerpt"`
	Category      ArticleCategory `json:"category" form:"category"`
	CoverImageURL string          `json:"cover_image_url" form:"cover_image_url"`
	Published     bool            `json:"published" form:"published"`
}

// Normalize trims every text field.
func (a ArticleInput) Normalize() ArticleInput {
	a.Title = strings.TrimSpace(a.Title)
	a.Slug = strings.TrimSpace(a.Slug)
	a.Content = strings.TrimSpace(a.Content)
	a.Excerpt = strings.TrimSpace(a.Excerpt)
	a.Category = ArticleCategory(strings.TrimSpace(string(a.Category)))
	a.CoverImageURL = strings.TrimSpace(a.CoverImageURL)
	return a
}

// Validate implements validation.Validatable.
func (a ArticleInput) Validate() error {
	n := a.Normalize()
	categories := make([]any, 0, len(ArticleCategories()))
	for _, c := range ArticleCategories() {
		categories = append(categories, c)
	}

	return validation.ValidateStruct(&n,
		validation.Field(&n.Title,
			validation.Required.Error(msgTitleRequired),
			validation.RuneLength(0, MaxTitleLength).Error(msgTitleTooLong),
		),
		validation.Field(&n.Slug,
			validation.Required.Error(msgSlugRequired),
			validation.RuneLength(0, MaxSlugLength).Error(msgSlugTooLong),
		),
		validation.Field(&n.Content,
			validation.Required.Error(msgContentRequired),
			validation.RuneLength(0, MaxContentLength).Error(msgContentTooLong),
		),
		validation.Field(&n.Excerpt,
			validation.RuneLength(0, MaxExcerptLength).Error(msgExcerptTooLong),
		),
		validation.Field(&n.Category,
			validation.Required.Error(msgCategoryRequired),
			validation.In(categories...).Error(msgCategoryInvalid),
		),
		validation.Field(&n.CoverImageURL,
			is.URL.Error(msgCoverInvalid),
		),
	)
}

// FieldErrors runs Validate and returns the field map, empty when valid.
func (a ArticleInput) FieldErrors() FieldErrors {
	return FieldErrors(FormatValidationErrorToMap(a.Validate()))
}

// FormatValidationErrorToMap flattens ozzo errors into field to message.
// Errors that are not field scoped land under "form".
func FormatValidationErrorToMap(err error) map[string]string {
	out := map[string]string{}
	if err == nil {
		return out
	}

	var fields validation.Errors
	if errors.As(err, &fields) {
		for name, ferr := range fields {
			if ferr != nil {
				out[name] = ferr.Error()
			}
		}
		return out
	}

	out["form"] = err.Error()
	return out
}
