package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"gatherctl/internal/forms"
	"gatherctl/internal/session"
	"gatherctl/pkg/api"
	"gatherctl/pkg/sanitizer"
)

func (a *app) cmdLogin(ctx context.Context, args []string) int {
	fs := pflag.NewFlagSet("login", pflag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	fs.Parse(args)

	form := forms.Login{Email: sanitizer.NormalizeEmail(*email), Password: *password}
	if err := a.forms.Validate(form); err != nil {
		return a.fail(err)
	}

	result, err := a.auth.Authenticate(ctx, api.Credentials{
		Email:    form.Email,
		Password: form.Password,
	})
	if err != nil {
		return a.fail(err)
	}

	err = a.store.Set(session.Session{
		Token:        result.Token,
		RefreshToken: result.RefreshToken,
		IsAdmin:      result.IsAdmin,
		DisplayName:  result.FullName,
	})
	if err != nil {
		return a.fail(err)
	}

	fmt.Printf("Logged in as %s", result.FullName)
	if result.IsAdmin {
		fmt.Print(" (admin)")
	}
	fmt.Println()
	return 0
}

func (a *app) cmdLogout() int {
	if err := a.store.Clear(); err != nil {
		return a.fail(err)
	}
	fmt.Println("Logged out")
	return 0
}

func (a *app) cmdRegister(ctx context.Context, args []string) int {
	fs := pflag.NewFlagSet("register", pflag.ExitOnError)
	firstName := fs.String("first-name", "", "first name")
	lastName := fs.String("last-name", "", "last name")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "password")
	confirm := fs.String("confirm-password", "", "password confirmation")
	gender := fs.String("gender", "PREFER_NOT_TO_SAY", "MALE, FEMALE or PREFER_NOT_TO_SAY")
	birthDate := fs.String("birth-date", "", "date of birth, YYYY-MM-DD")
	fs.Parse(args)

	form := forms.Registration{
		FirstName:       sanitizer.NormalizeName(*firstName),
		LastName:        sanitizer.NormalizeName(*lastName),
		Email:           sanitizer.NormalizeEmail(*email),
		Password:        *password,
		ConfirmPassword: *confirm,
		Gender:          *gender,
		BirthDate:       *birthDate,
	}
	if err := a.forms.Validate(form); err != nil {
		return a.fail(err)
	}

	err := a.auth.Register(ctx, api.Registration{
		FirstName: form.FirstName,
		LastName:  form.LastName,
		Email:     form.Email,
		Password:  form.Password,
		Gender:    form.Gender,
		BirthDate: form.BirthDate,
	})
	if err != nil {
		return a.fail(err)
	}

	fmt.Println("Account created. Check your email for the activation code, then run `gatherctl activate`.")
	return 0
}

func (a *app) cmdActivate(ctx context.Context, args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: gatherctl activate <code>")
		return 2
	}

	if err := a.auth.ActivateAccount(ctx, args[0]); err != nil {
		return a.fail(err)
	}
	fmt.Println("Account activated, you can log in now")
	return 0
}

func (a *app) cmdForgotPassword(ctx context.Context, args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: gatherctl forgot-password <email>")
		return 2
	}

	email := sanitizer.NormalizeEmail(args[0])
	if err := a.forms.Validate(forms.PasswordResetRequest{Email: email}); err != nil {
		return a.fail(err)
	}
	if err := a.auth.ForgotPassword(ctx, email); err != nil {
		return a.fail(err)
	}
	fmt.Println("If that account exists, a reset link is on its way. Use its token with `gatherctl reset-password`.")
	return 0
}

func (a *app) cmdResetPassword(ctx context.Context, args []string) int {
	fs := pflag.NewFlagSet("reset-password", pflag.ExitOnError)
	password := fs.String("password", "", "new password")
	confirm := fs.String("confirm", "", "new password again")
	fs.Parse(args)

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: gatherctl reset-password <token> --password <new> --confirm <new>")
		return 2
	}

	form := forms.PasswordReset{NewPassword: *password, ConfirmPassword: *confirm}
	if err := a.forms.Validate(form); err != nil {
		return a.fail(err)
	}

	if err := a.auth.ResetPassword(ctx, fs.Arg(0), form.NewPassword); err != nil {
		return a.fail(err)
	}
	fmt.Println("Password reset, you can log in now")
	return 0
}

// cmdRefresh trades the stored refresh token for a fresh session. Useful when
// the bearer token has expired but the refresh token is still live.
func (a *app) cmdRefresh(ctx context.Context) int {
	sess := a.store.Get()
	if sess.RefreshToken == "" {
		fmt.Fprintln(os.Stderr, "No refresh token stored, run `gatherctl login`")
		return 1
	}

	result, err := a.auth.Refresh(ctx, sess.RefreshToken)
	if err != nil {
		return a.fail(err)
	}

	err = a.store.Set(session.Session{
		Token:        result.Token,
		RefreshToken: result.RefreshToken,
		IsAdmin:      result.IsAdmin,
		DisplayName:  result.FullName,
	})
	if err != nil {
		return a.fail(err)
	}
	fmt.Println("Session refreshed")
	return 0
}

func (a *app) cmdWhoami() int {
	sess := a.store.Get()
	if !sess.Authenticated() {
		fmt.Println("Not logged in")
		return 0
	}
	fmt.Printf("%s (%s)\n", sess.DisplayName, sess.Role())
	return 0
}
