package command

import (
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/trakjobs/trakjobs-go/internal/client/apierr"
	"github.com/trakjobs/trakjobs-go/internal/core/domain"
	"github.com/trakjobs/trakjobs-go/internal/session"
)

// LoginCommand signs in and stores the session.
func LoginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Sign in and store the session",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "email",
				Aliases: []string{"e"},
				Usage:   "Account email (prompted when omitted)",
			},
			&cli.StringFlag{
				Name:    "password",
				Aliases: []string{"p"},
				Usage:   "Account password (prompted when omitted)",
				EnvVars: []string{"TRAKJOBS_PASSWORD"},
			},
		},
		Action: login,
	}
}

func login(c *cli.Context) error {
	e, err := env(c)
	if err != nil {
		return err
	}
	e.Enter("/login")

	email, err := valueOrPrompt(c, "email", "Email: ")
	if err != nil {
		return err
	}
	password, err := valueOrPrompt(c, "password", "Password: ")
	if err != nil {
		return err
	}

	res, err := e.Auth.Login(c.Context, domain.Credentials{Email: email, Password: password})
	if err != nil {
		return err
	}
	e.Enter("/clients")

	msg := res.Message
	if name := res.User.Name(); name != "" {
		msg += " (" + name + ")"
	}
	return e.Printer.Message(msg)
}

// LogoutCommand forgets the stored session.
func LogoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "Forget the stored session",
		Action: func(c *cli.Context) error {
			e, err := env(c)
			if err != nil {
				return err
			}
			e.signingOut.Store(true)
			defer e.signingOut.Store(false)

			if err := e.Auth.Logout(); err != nil {
				return err
			}
			return e.Printer.Message("Logged out")
		},
	}
}

// RegisterCommand creates an account.
func RegisterCommand() *cli.Command {
	return &cli.Command{
		Name:  "register",
		Usage: "Create a TrakJobs account",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "business-name", Usage: "Business name"},
			&cli.StringFlag{Name: "website", Usage: "Website name"},
			&cli.StringFlag{Name: "name", Usage: "Your full name"},
			&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Email address"},
			&cli.StringFlag{Name: "mobile", Usage: "Mobile number"},
			&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "Password", EnvVars: []string{"TRAKJOBS_PASSWORD"}},
			&cli.StringFlag{Name: "password-confirmation", Usage: "Repeat the password (defaults to --password)"},
			&cli.BoolFlag{Name: "agree-to-terms", Usage: "Accept the terms of service"},
		},
		Action: register,
	}
}

func register(c *cli.Context) error {
	e, err := env(c)
	if err != nil {
		return err
	}
	e.Enter("/register")

	reg := domain.Registration{
		BusinessName:         c.String("business-name"),
		WebsiteName:          c.String("website"),
		FullName:             c.String("name"),
		Email:                c.String("email"),
		MobileNumber:         c.String("mobile"),
		Password:             c.String("password"),
		PasswordConfirmation: c.String("password-confirmation"),
		AgreeToTerms:         c.Bool("agree-to-terms"),
	}
	if !c.IsSet("password-confirmation") {
		reg.PasswordConfirmation = reg.Password
	}

	reply, err := e.Auth.Register(c.Context, reg)
	if err != nil {
		return err
	}
	return e.Printer.Message(reply.Message)
}

// PasswordCommand groups the password recovery flow.
func PasswordCommand() *cli.Command {
	return &cli.Command{
		Name:  "password",
		Usage: "Recover a forgotten password",
		Subcommands: []*cli.Command{
			{
				Name:      "forgot",
				Usage:     "Mail a password reset link",
				ArgsUsage: "EMAIL",
				Action:    passwordForgot,
			},
			{
				Name:  "reset",
				Usage: "Set a new password with the token from the reset link",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Account email"},
					&cli.StringFlag{Name: "token", Aliases: []string{"t"}, Usage: "Reset token"},
					&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "New password", EnvVars: []string{"TRAKJOBS_PASSWORD"}},
					&cli.StringFlag{Name: "password-confirmation", Usage: "Repeat the new password (defaults to --password)"},
				},
				Action: passwordReset,
			},
		},
	}
}

func passwordForgot(c *cli.Context) error {
	e, err := env(c)
	if err != nil {
		return err
	}
	e.Enter("/forgot-password")

	email := c.Args().First()
	if email == "" {
		if email, err = prompt(c, "Email: "); err != nil {
			return err
		}
	}
	reply, err := e.Auth.ForgotPassword(c.Context, domain.PasswordForgot{Email: email})
	if err != nil {
		return err
	}
	return e.Printer.Message(reply.Message)
}

func passwordReset(c *cli.Context) error {
	e, err := env(c)
	if err != nil {
		return err
	}
	e.Enter("/reset-password")

	req := domain.PasswordReset{
		Email:                c.String("email"),
		Token:                c.String("token"),
		Password:             c.String("password"),
		PasswordConfirmation: c.String("password-confirmation"),
	}
	if !c.IsSet("password-confirmation") {
		req.PasswordConfirmation = req.Password
	}
	reply, err := e.Auth.ResetPassword(c.Context, req)
	if err != nil {
		return err
	}
	return e.Printer.Message(reply.Message)
}

// WhoamiCommand shows the signed-in user.
func WhoamiCommand() *cli.Command {
	return &cli.Command{
		Name:  "whoami",
		Usage: "Show the signed-in user",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "remote",
				Usage: "Fetch the profile from the API and refresh the stored copy",
			},
		},
		Action: whoami,
	}
}

// identity is the whoami view.
type identity struct {
	UserID    string `json:"userId"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	VendorID  string `json:"vendorId"`
	Server    string `json:"server"`
	ExpiresAt string `json:"tokenExpiresAt,omitempty"`
	Expired   bool   `json:"tokenExpired"`
}

func whoami(c *cli.Context) error {
	e, err := env(c)
	if err != nil {
		return err
	}
	if err := e.requireLogin(); err != nil {
		return err
	}
	e.Enter("/profile")

	user, _ := e.Session.User()
	if c.Bool("remote") {
		if user, err = e.Auth.Profile(c.Context); err != nil {
			return err
		}
	}

	id := identity{
		UserID: user.ID(),
		Name:   user.Name(),
		Email:  user.Email(),
		Server: e.HTTP.BaseURL(),
	}
	id.VendorID, _ = user.VendorID()

	// Opaque tokens carry no claims; only JWTs report an expiry.
	token, _ := e.Session.Token()
	if info, err := session.InspectToken(token); err == nil && !info.ExpiresAt.IsZero() {
		id.ExpiresAt = info.ExpiresAt.Local().Format(time.RFC3339)
		id.Expired = info.Expired(time.Now())
		if id.Email == "" && strings.Contains(info.Subject, "@") {
			id.Email = info.Subject
		}
	}
	return e.Printer.Print(id)
}

// fieldError reports a bad flag the way the API reports a bad field.
func fieldError(field, msg string) error {
	return apierr.Normalize(domain.ErrValidation.WithFields(map[string]string{field: msg}))
}
