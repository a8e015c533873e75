package main

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-portal"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedExchange struct {
	otps     []portal.OTPRequest
	verified []string
}

func (s *scriptedExchange) SignInWithPassword(_ context.Context, email, _ string) (*portal.Session, error) {
	return &portal.Session{AccessToken: "a", Identity: portal.Identity{ID: uuid.New(), Email: email}}, nil
}

func (s *scriptedExchange) RequestOTP(_ context.Context, req portal.OTPRequest) error {
	s.otps = append(s.otps, req)
	return nil
}

func (s *scriptedExchange) VerifyOTP(_ context.Context, destination, code string, _ portal.Channel) (*portal.Session, error) {
	s.verified = append(s.verified, code)
	if code != "123456" {
		return nil, portal.ErrInvalidCredentials
	}
	return &portal.Session{AccessToken: "a", Identity: portal.Identity{ID: uuid.New(), Email: destination}}, nil
}

func TestDriveEmailCodeLogin(t *testing.T) {
	exchange := &scriptedExchange{}
	in := strings.NewReader("3\n User@Example.com \n12\n123456\n")
	var out bytes.Buffer

	session, err := drive(context.Background(), portal.NewFlow(exchange), portal.PurposeLogin, "", newConsole(in, &out))
	require.NoError(t, err)

	assert.Equal(t, "user@example.com", session.Identity.Email)
	require.Len(t, exchange.otps, 1)
	assert.Equal(t, []string{"123456"}, exchange.verified)
	assert.Contains(t, out.String(), "code sent to user@example.com")
	assert.Contains(t, out.String(), "code (r to resend")
}

func TestDrivePasswordRetriesValidation(t *testing.T) {
	exchange := &scriptedExchange{}
	in := strings.NewReader("bad\n123\nuser@example.com\nsecret1\n")
	var out bytes.Buffer

	session, err := drive(context.Background(), portal.NewFlow(exchange), portal.PurposeLogin, portal.MethodPassword, newConsole(in, &out))
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", session.Identity.Email)
	assert.Contains(t, out.String(), "password:")
}

func TestDriveResendWaitsForCooldown(t *testing.T) {
	exchange := &scriptedExchange{}
	var mu sync.Mutex
	now := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	flow := portal.NewFlow(exchange,
		portal.WithResendCooldown(2*time.Second),
		portal.WithFlowClock(clock),
		portal.WithFlowTicker(func(time.Duration) (<-chan time.Time, func()) {
			ticks := make(chan time.Time, 2)
			go func() {
				for i := 0; i < 2; i++ {
					mu.Lock()
					now = now.Add(time.Second)
					mu.Unlock()
					ticks <- clock()
				}
			}()
			return ticks, func() {}
		}),
	)

	in := strings.NewReader("newbie\n+8613800138000\nr\n123456\n")
	var out bytes.Buffer

	session, err := drive(context.Background(), flow, portal.PurposeRegister, portal.MethodPhone, newConsole(in, &out))
	require.NoError(t, err)
	require.NotNil(t, session)
	require.Len(t, exchange.otps, 2)
	assert.True(t, exchange.otps[0].CreateUser)
	assert.Equal(t, "newbie", exchange.otps[0].Metadata["username"])
	assert.Contains(t, out.String(), "resend available")
}

func TestDriveEndOfInput(t *testing.T) {
	_, err := drive(context.Background(), portal.NewFlow(&scriptedExchange{}), portal.PurposeLogin, portal.MethodEmailOTP,
		newConsole(strings.NewReader(""), &bytes.Buffer{}))
	assert.Error(t, err)
}

func TestMethodFlag(t *testing.T) {
	method, rest, err := methodFlag("login", []string{"-method", "phone-otp", "-debug"})
	require.NoError(t, err)
	assert.Equal(t, "phone-otp", method)
	assert.Equal(t, []string{"-debug"}, rest)

	method, _, err = methodFlag("register", []string{"--method=email"})
	require.NoError(t, err)
	assert.Equal(t, "email", method)

	_, _, err = methodFlag("login", []string{"-method"})
	assert.Error(t, err)
}

func TestRunRejectsUnknownCommand(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), []string{"launch"}, strings.NewReader(""), &out)
	assert.Error(t, err)
	assert.Contains(t, out.String(), "usage: portalctl")
}
