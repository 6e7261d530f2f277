package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/maintdesk/maintdesk/internal/api"
	"github.com/maintdesk/maintdesk/internal/rbac"
)

func runLogin(ctx context.Context, a *app, args []string) error {
	username := ""
	password := ""
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--username", "-u":
			if i+1 >= len(args) {
				return fmt.Errorf("--username requires a value")
			}
			username = args[i+1]
			i++
		case "--password", "-p":
			if i+1 >= len(args) {
				return fmt.Errorf("--password requires a value")
			}
			password = args[i+1]
			i++
		default:
			return fmt.Errorf("unknown login option: %s", args[i])
		}
	}

	var err error
	if username == "" {
		username, err = promptLine("Username: ")
		if err != nil {
			return err
		}
	}
	if password == "" {
		password, err = promptLine("Password: ")
		if err != nil {
			return err
		}
	}
	if username == "" || password == "" {
		return fmt.Errorf("username and password are required")
	}

	identity, err := a.manager.Login(ctx, username, password)
	if err != nil {
		return err
	}

	fmt.Println("Login successful")
	if identity != nil {
		fmt.Printf("Logged in as: %s (%s)\n", identity.DisplayName(), rbac.EffectiveRole(identity))
		if !identity.ExpiresAt.IsZero() {
			fmt.Printf("Session expires: %s\n", FormatTimeOrDash(identity.ExpiresAt))
		}
	}
	return nil
}

func runLogout(a *app, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("usage: maintdesk logout")
	}
	a.manager.Logout()
	fmt.Println("Logged out")
	return nil
}

func runRegister(ctx context.Context, a *app, args []string) error {
	payload := api.RegisterPayload{}
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--username", "-u":
			if i+1 >= len(args) {
				return fmt.Errorf("--username requires a value")
			}
			payload.Username = args[i+1]
			i++
		case "--email":
			if i+1 >= len(args) {
				return fmt.Errorf("--email requires a value")
			}
			payload.Email = args[i+1]
			i++
		case "--password", "-p":
			if i+1 >= len(args) {
				return fmt.Errorf("--password requires a value")
			}
			payload.Password = args[i+1]
			i++
		case "--first-name":
			if i+1 >= len(args) {
				return fmt.Errorf("--first-name requires a value")
			}
			payload.FirstName = args[i+1]
			i++
		case "--last-name":
			if i+1 >= len(args) {
				return fmt.Errorf("--last-name requires a value")
			}
			payload.LastName = args[i+1]
			i++
		default:
			return fmt.Errorf("unknown register option: %s", args[i])
		}
	}

	if payload.Username == "" || payload.Email == "" {
		return fmt.Errorf("--username and --email are required")
	}
	if payload.Password == "" {
		pw, err := promptLine("Password: ")
		if err != nil {
			return err
		}
		payload.Password = pw
	}
	if payload.Password == "" {
		return fmt.Errorf("a password is required")
	}
	payload.Password2 = payload.Password

	user, err := a.client.Register(ctx, payload)
	if err != nil {
		return err
	}
	if a.cfg.jsonOutput {
		return PrintJSON(os.Stdout, user)
	}
	fmt.Printf("Account created: %s (id %d)\n", user.Username, user.ID)
	fmt.Println("Run 'maintdesk login' to start a session")
	return nil
}

func runRefresh(ctx context.Context, a *app, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("usage: maintdesk refresh")
	}
	if err := a.manager.Refresh(ctx); err != nil {
		return err
	}
	fmt.Println("Access token refreshed")
	return nil
}

func runWhoAmI(a *app, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("usage: maintdesk whoami")
	}

	identity, err := a.manager.Current()
	if err != nil {
		return err
	}
	if a.cfg.jsonOutput {
		return PrintJSON(os.Stdout, identity)
	}

	fmt.Printf("Name:     %s\n", identity.DisplayName())
	fmt.Printf("Username: %s\n", identity.Username)
	fmt.Printf("Email:    %s\n", dashIfEmpty(identity.Email))
	fmt.Printf("Role:     %s", rbac.EffectiveRole(identity))
	if rbac.EffectiveRole(identity) != identity.Role {
		fmt.Printf(" (declared: %s)", identity.Role)
	}
	fmt.Println()
	if !identity.ExpiresAt.IsZero() {
		fmt.Printf("Expires:  %s\n", FormatTimeOrDash(identity.ExpiresAt))
	}

	fmt.Println("\nPermissions")
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "CAPABILITY\tALLOWED\tREASON")
	for _, c := range rbac.AllCapabilities() {
		d := rbac.Decide(identity, c)
		allowed := "no"
		if d.Allowed {
			allowed = "yes"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", c, allowed, d.Reason)
	}
	return w.Flush()
}

func promptLine(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
