package commands

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrLoginRejected is returned when the backend refuses the credentials
var ErrLoginRejected = errors.New("login rejected")

func Login(ctx context.Context, env *Env, email, password string) error {
	res, err := env.Session.Login(ctx, email, password)
	if err != nil {
		return err
	}
	if !res.OK {
		return fmt.Errorf("%w: %s", ErrLoginRejected, res.Message)
	}
	env.printf("Logged in as %s\n", res.User.Email)
	return nil
}

func Logout(env *Env) error {
	if err := env.Session.Logout(); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	env.printf("Logged out\n")
	return nil
}

// WhoAmI prints the stored user and when the token runs out
func WhoAmI(env *Env, now time.Time) {
	user, ok := env.Session.User()
	if !ok && !env.Session.Authenticated() {
		env.printf("Not logged in\n")
		return
	}
	if ok {
		env.printf("%s <%s> (%s)\n", user.Name, user.Email, user.Role)
	} else {
		env.printf("Logged in\n")
	}
	if exp, ok := env.Session.ExpiresAt(); ok {
		if exp.Before(now) {
			env.printf("Token expired at %s\n", exp.Local().Format("2006-01-02 15:04"))
		} else {
			env.printf("Token valid until %s\n", exp.Local().Format("2006-01-02 15:04"))
		}
	}
}
