package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"gatherctl/internal/forms"
	"gatherctl/pkg/api"
	"gatherctl/pkg/model"
)

// cmdProfile shows the profile by default; the update and photo flags map to
// the edit actions of the profile view.
func (a *app) cmdProfile(ctx context.Context, args []string) int {
	fs := pflag.NewFlagSet("profile", pflag.ExitOnError)
	first := fs.String("first", "", "new first name")
	last := fs.String("last", "", "new last name")
	photo := fs.String("photo", "", "path to a profile picture to upload")
	fs.Parse(args)

	if !a.admit("/profile", false) {
		return 1
	}

	if *photo != "" {
		return a.uploadProfilePhoto(ctx, *photo)
	}
	if *first != "" || *last != "" {
		return a.updateProfile(ctx, *first, *last)
	}

	profile, err := a.profile.Get(ctx)
	if err != nil {
		return a.fail(err)
	}
	printProfile(profile)
	return 0
}

func (a *app) updateProfile(ctx context.Context, first, last string) int {
	// Partial edits keep the other name as it stands.
	current, err := a.profile.Get(ctx)
	if err != nil {
		return a.fail(err)
	}
	if first == "" {
		first = current.FirstName
	}
	if last == "" {
		last = current.LastName
	}

	profile, err := a.profile.Update(ctx, api.ProfileUpdate{FirstName: first, LastName: last})
	if err != nil {
		return a.fail(err)
	}
	fmt.Println("Profile updated")
	printProfile(profile)
	return 0
}

func (a *app) uploadProfilePhoto(ctx context.Context, path string) int {
	file, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot read %s: %v\n", path, err)
		return 1
	}
	defer file.Close()

	photoURL, err := a.profile.UploadPhoto(ctx, filepath.Base(path), file)
	if err != nil {
		return a.fail(err)
	}
	fmt.Println("Photo uploaded:", photoURL)
	return 0
}

func (a *app) cmdPasswd(ctx context.Context, args []string) int {
	fs := pflag.NewFlagSet("passwd", pflag.ExitOnError)
	current := fs.String("current", "", "current password")
	newPassword := fs.String("new", "", "new password")
	confirm := fs.String("confirm", "", "new password again")
	fs.Parse(args)

	if !a.admit("/profile", false) {
		return 1
	}

	form := forms.PasswordChange{
		CurrentPassword: *current,
		NewPassword:     *newPassword,
		ConfirmPassword: *confirm,
	}
	if err := a.forms.Validate(form); err != nil {
		return a.fail(err)
	}

	err := a.profile.ChangePassword(ctx, api.PasswordChange{
		CurrentPassword: form.CurrentPassword,
		NewPassword:     form.NewPassword,
	})
	if err != nil {
		return a.fail(err)
	}
	fmt.Println("Password changed")
	return 0
}

func printProfile(profile *model.Profile) {
	fmt.Printf("%s %s <%s>\n", profile.FirstName, profile.LastName, profile.Email)
	if !profile.BirthDate.IsZero() {
		fmt.Printf("  born: %s\n", profile.BirthDate.Format("2006-01-02"))
	}
	if profile.PhotoURL != "" {
		fmt.Printf("  photo: %s\n", profile.PhotoURL)
	}
}
