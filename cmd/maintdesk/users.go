package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/maintdesk/maintdesk/internal/api"
)

func runUsers(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: maintdesk users <list|get|role|delete> [args]")
	}

	switch args[0] {
	case "list", "ls":
		return usersList(ctx, a, args[1:])
	case "get", "show":
		if len(args) != 2 {
			return fmt.Errorf("usage: maintdesk users get <id>")
		}
		return usersGet(ctx, a, args[1])
	case "role":
		if len(args) != 3 {
			return fmt.Errorf("usage: maintdesk users role <id> <role>")
		}
		return usersRole(ctx, a, args[1], args[2])
	case "delete", "rm":
		if len(args) != 2 {
			return fmt.Errorf("usage: maintdesk users delete <id>")
		}
		return usersDelete(ctx, a, args[1])
	default:
		return fmt.Errorf("unknown users command: %s", args[0])
	}
}

func usersList(ctx context.Context, a *app, args []string) error {
	f := api.UserFilters{}
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--role":
			if i+1 >= len(args) {
				return fmt.Errorf("--role requires a value")
			}
			f.Role = args[i+1]
			i++
		case "--search":
			if i+1 >= len(args) {
				return fmt.Errorf("--search requires a value")
			}
			f.Search = args[i+1]
			i++
		default:
			return fmt.Errorf("unknown flag: %s", args[i])
		}
	}

	users, err := a.client.ListUsers(ctx, f)
	if err != nil {
		return err
	}
	if a.cfg.jsonOutput {
		return PrintJSON(os.Stdout, users)
	}

	headers := []string{"ID", "USERNAME", "NAME", "EMAIL", "ROLE", "STAFF"}
	rows := make([][]string, 0, len(users))
	for _, u := range users {
		name := strings.TrimSpace(u.FirstName + " " + u.LastName)
		rows = append(rows, []string{
			strconv.FormatInt(u.ID, 10),
			u.Username,
			Truncate(dashIfEmpty(name), 24),
			Truncate(dashIfEmpty(u.Email), 28),
			u.Role,
			strconv.FormatBool(u.IsStaff),
		})
	}
	RenderTable(os.Stdout, headers, rows)
	fmt.Fprintf(os.Stdout, "\nTotal: %d users\n", len(users))
	return nil
}

func usersGet(ctx context.Context, a *app, rawID string) error {
	id, err := parseID(rawID)
	if err != nil {
		return err
	}
	u, err := a.client.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if a.cfg.jsonOutput {
		return PrintJSON(os.Stdout, u)
	}

	fmt.Printf("ID: %d\n", u.ID)
	fmt.Printf("Username: %s\n", u.Username)
	fmt.Printf("Name: %s\n", dashIfEmpty(strings.TrimSpace(u.FirstName+" "+u.LastName)))
	fmt.Printf("Email: %s\n", dashIfEmpty(u.Email))
	fmt.Printf("Role: %s\n", u.Role)
	fmt.Printf("Staff: %t\n", u.IsStaff)
	fmt.Printf("Superuser: %t\n", u.IsSuperuser)
	return nil
}

func usersRole(ctx context.Context, a *app, rawID, role string) error {
	id, err := parseID(rawID)
	if err != nil {
		return err
	}
	u, err := a.client.UpdateUserRole(ctx, id, strings.ToLower(role))
	if err != nil {
		return err
	}
	if a.cfg.jsonOutput {
		return PrintJSON(os.Stdout, u)
	}
	fmt.Printf("User %s is now %s\n", u.Username, u.Role)
	return nil
}

func usersDelete(ctx context.Context, a *app, rawID string) error {
	id, err := parseID(rawID)
	if err != nil {
		return err
	}
	if err := a.client.DeleteUser(ctx, id); err != nil {
		return err
	}
	fmt.Printf("User %d deleted\n", id)
	return nil
}

func runTechnicians(ctx context.Context, a *app, args []string) error {
	if len(args) > 0 && (args[0] == "list" || args[0] == "ls") {
		args = args[1:]
	}

	f := api.TechnicianFilters{}
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--available":
			t := true
			f.IsAvailable = &t
		case "--expertise":
			if i+1 >= len(args) {
				return fmt.Errorf("--expertise requires a value")
			}
			f.Expertise = args[i+1]
			i++
		default:
			return fmt.Errorf("unknown flag: %s", args[i])
		}
	}

	techs, err := a.client.ListTechnicians(ctx, f)
	if err != nil {
		return err
	}
	if a.cfg.jsonOutput {
		return PrintJSON(os.Stdout, techs)
	}

	headers := []string{"ID", "EMPLOYEE", "NAME", "EXPERTISE", "PHONE", "AVAILABLE"}
	rows := make([][]string, 0, len(techs))
	for _, t := range techs {
		name := strings.TrimSpace(t.User.FirstName + " " + t.User.LastName)
		if name == "" {
			name = t.User.Username
		}
		rows = append(rows, []string{
			strconv.FormatInt(t.ID, 10),
			t.EmployeeID,
			Truncate(name, 24),
			Truncate(dashIfEmpty(t.Expertise), 20),
			dashIfEmpty(t.Phone),
			strconv.FormatBool(t.IsAvailable),
		})
	}
	RenderTable(os.Stdout, headers, rows)
	fmt.Fprintf(os.Stdout, "\nTotal: %d technicians\n", len(techs))
	return nil
}
