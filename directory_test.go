package portal_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-portal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type phoneBook struct{ seen [][]string }

func (p *phoneBook) PhoneRegistered(_ context.Context, variants []string) (bool, error) {
	p.seen = append(p.seen, variants)
	for _, v := range variants {
		if v == "+8613800138000" {
			return true, nil
		}
	}
	return false, nil
}

type emailBook struct{ seen []string }

func (e *emailBook) EmailRegistered(_ context.Context, email string) (bool, error) {
	e.seen = append(e.seen, email)
	return email == "known@example.com", nil
}

func TestAccountDirectory(t *testing.T) {
	ctx := context.Background()
	phones, emails := &phoneBook{}, &emailBook{}
	dir := portal.NewAccountDirectory(phones, emails, "")

	ok, err := dir.Exists(ctx, portal.ContactPhone, " 13800138000 ")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"+8613800138000", "13800138000", "8613800138000"}, phones.seen[0])

	ok, err = dir.Exists(ctx, portal.ContactEmail, "Known@Example.com")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"known@example.com"}, emails.seen)

	ok, err = dir.Exists(ctx, portal.ContactEmail, "new@example.com")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = dir.Exists(ctx, portal.ContactKind("fax"), "123")
	assert.Error(t, err)
}

func TestAccountDirectoryMissingBackends(t *testing.T) {
	dir := portal.NewAccountDirectory(nil, nil, "US")

	_, err := dir.Exists(context.Background(), portal.ContactPhone, "4155552671")
	assert.Error(t, err)
	_, err = dir.Exists(context.Background(), portal.ContactEmail, "a@example.com")
	assert.Error(t, err)
}

func TestAccountDirectoryGatesFlow(t *testing.T) {
	exchange := &fakeExchange{}
	dir := portal.NewAccountDirectory(&phoneBook{}, &emailBook{}, "CN")
	flow := newTestFlow(exchange, newClock(), portal.WithExistenceChecker(dir))
	ctx := context.Background()

	attempt, err := flow.Begin(portal.PurposeRegister)
	require.NoError(t, err)
	require.NoError(t, attempt.Choose(ctx, portal.MethodPhone))
	err = attempt.Submit(ctx, portal.Credentials{Destination: "13800138000", Username: "neo"})
	assert.True(t, portal.HasTextCode(err, portal.TextCodeAccountExists))
	assert.Equal(t, "该账号已注册，请直接登录", attempt.Errors()["phone"])
	assert.Empty(t, exchange.otps)
}
