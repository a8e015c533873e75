package portal_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-portal"
	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, portal.ValidateEmail("user@example.com"))
	assert.NoError(t, portal.ValidateEmail("  user@example.com  "))
	assert.EqualError(t, portal.ValidateEmail(""), "请输入邮箱地址")
	assert.EqualError(t, portal.ValidateEmail("user@"), "请输入有效的邮箱地址")
	long := strings.Repeat("a", 250) + "@example.com"
	assert.EqualError(t, portal.ValidateEmail(long), "邮箱地址不能超过255个字符")
}

func TestValidatePhone(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{"+8613800138000", true},
		{"13800138000", true},
		{"1234567", true},
		{"123456", false},
		{"0123456789", false},
		{"+1234567890123456", false},
		{"138-0013-8000", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			err := portal.ValidatePhone(tt.in)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, "请输入有效的手机号码")
			}
		})
	}
	assert.EqualError(t, portal.ValidatePhone(" "), "请输入手机号码")
}

func TestValidatePasswordAndCode(t *testing.T) {
	assert.NoError(t, portal.ValidatePassword("123456"))
	assert.EqualError(t, portal.ValidatePassword("12345"), "密码至少需要6个字符")
	assert.EqualError(t, portal.ValidatePassword(""), "请输入密码")

	assert.NoError(t, portal.ValidateOTPCode("123456"))
	assert.EqualError(t, portal.ValidateOTPCode("1234567"), "验证码必须是6位")
	assert.EqualError(t, portal.ValidateOTPCode("12345"), "验证码必须是6位")
}

func TestValidateUsername(t *testing.T) {
	assert.NoError(t, portal.ValidateUsername("张三"))
	assert.EqualError(t, portal.ValidateUsername(" a "), "用户名长度需在2到50个字符之间")
	assert.EqualError(t, portal.ValidateUsername(strings.Repeat("x", 51)), "用户名长度需在2到50个字符之间")
	assert.EqualError(t, portal.ValidateUsername(""), "请输入用户名")
}

func TestValidatePasswordConfirmation(t *testing.T) {
	assert.Empty(t, portal.ValidatePasswordConfirmation("secret1", "secret1"))

	fields := portal.ValidatePasswordConfirmation("secret1", "secret2")
	assert.Equal(t, "两次输入的密码不一致", fields["confirm_password"])

	fields = portal.ValidatePasswordConfirmation("123", "123")
	assert.Equal(t, "密码至少需要6个字符", fields["password"])
	assert.NotContains(t, fields, "confirm_password")
}

func TestValidateCredentials(t *testing.T) {
	creds, fields := portal.ValidateCredentials(portal.PurposeLogin, portal.MethodPassword,
		portal.Credentials{Destination: " USER@example.com ", Password: "secret1"})
	assert.Empty(t, fields)
	assert.Equal(t, "user@example.com", creds.Destination)

	creds, fields = portal.ValidateCredentials(portal.PurposeLogin, portal.MethodPhoneOTP,
		portal.Credentials{Destination: "138 0013-8000"})
	assert.Empty(t, fields)
	assert.Equal(t, "13800138000", creds.Destination)

	_, fields = portal.ValidateCredentials(portal.PurposeRegister, portal.MethodEmail,
		portal.Credentials{Destination: "bad", Username: "x"})
	assert.Equal(t, portal.FieldErrors{
		"email":    "请输入有效的邮箱地址",
		"username": "用户名长度需在2到50个字符之间",
	}, fields)
}

func TestArticleInputFieldErrors(t *testing.T) {
	assert.Empty(t, validInput().FieldErrors())

	in := validInput()
	in.Title = strings.Repeat("标", 201)
	in.Excerpt = strings.Repeat("e", 501)
	in.CoverImageURL = "not a url"
	fields := in.FieldErrors()
	assert.Equal(t, "标题不能超过200个字符", fields["title"])
	assert.Equal(t, "摘要不能超过500个字符", fields["excerpt"])
	assert.Equal(t, "封面图片链接无效", fields["cover_image_url"])

	in = validInput()
	in.Category = ""
	assert.Equal(t, "请选择文章分类", in.FieldErrors()["category"])
}

func TestFormatValidationErrorToMap(t *testing.T) {
	assert.Empty(t, portal.FormatValidationErrorToMap(nil))
	assert.Equal(t, map[string]string{"form": "boom"}, portal.FormatValidationErrorToMap(errors.New("boom")))
}

func TestFieldErrorsErr(t *testing.T) {
	assert.NoError(t, portal.FieldErrors{}.Err())

	err := portal.FieldErrors{"b": "second", "a": "first"}.Err()
	assert.EqualError(t, err, "validation failed: a: first; b: second")
	assert.ErrorIs(t, err, portal.ErrValidationFailed)
}
