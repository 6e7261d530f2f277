package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/maintdesk/maintdesk/internal/api"
)

func runEquipment(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: maintdesk equipment <list|get|create|delete|history|stats> [args]")
	}

	switch args[0] {
	case "list", "ls":
		return equipmentList(ctx, a, args[1:])
	case "get", "show":
		if len(args) != 2 {
			return fmt.Errorf("usage: maintdesk equipment get <id>")
		}
		return equipmentGet(ctx, a, args[1])
	case "create":
		return equipmentCreate(ctx, a, args[1:])
	case "delete", "rm":
		if len(args) != 2 {
			return fmt.Errorf("usage: maintdesk equipment delete <id>")
		}
		return equipmentDelete(ctx, a, args[1])
	case "history":
		if len(args) != 2 {
			return fmt.Errorf("usage: maintdesk equipment history <id>")
		}
		return equipmentHistory(ctx, a, args[1])
	case "stats":
		return equipmentStats(ctx, a, args[1:])
	default:
		return fmt.Errorf("unknown equipment command: %s", args[0])
	}
}

func equipmentList(ctx context.Context, a *app, args []string) error {
	f := api.EquipmentFilters{}
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--status":
			if i+1 >= len(args) {
				return fmt.Errorf("--status requires a value")
			}
			f.Status = api.EquipmentStatus(args[i+1])
			i++
		case "--department":
			if i+1 >= len(args) {
				return fmt.Errorf("--department requires a value")
			}
			f.Department = args[i+1]
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

	items, err := a.client.ListEquipment(ctx, f)
	if err != nil {
		return err
	}
	if a.cfg.jsonOutput {
		return PrintJSON(os.Stdout, items)
	}

	headers := []string{"ID", "CODE", "NAME", "DEPARTMENT", "LOCATION", "STATUS"}
	rows := make([][]string, 0, len(items))
	for _, eq := range items {
		rows = append(rows, []string{
			strconv.FormatInt(eq.ID, 10),
			eq.EquipmentCode,
			Truncate(eq.Name, 28),
			Truncate(eq.Department, 18),
			Truncate(eq.Location, 18),
			ColorStatus(string(eq.Status)),
		})
	}
	RenderTable(os.Stdout, headers, rows)
	fmt.Fprintf(os.Stdout, "\nTotal: %d equipment\n", len(items))
	return nil
}

func equipmentGet(ctx context.Context, a *app, rawID string) error {
	id, err := parseID(rawID)
	if err != nil {
		return err
	}
	eq, err := a.client.GetEquipment(ctx, id)
	if err != nil {
		return err
	}
	if a.cfg.jsonOutput {
		return PrintJSON(os.Stdout, eq)
	}

	fmt.Printf("ID: %d\n", eq.ID)
	fmt.Printf("Code: %s\n", eq.EquipmentCode)
	fmt.Printf("Name: %s\n", eq.Name)
	fmt.Printf("Department: %s\n", dashIfEmpty(eq.Department))
	fmt.Printf("Location: %s\n", dashIfEmpty(eq.Location))
	fmt.Printf("Status: %s\n", ColorStatus(string(eq.Status)))
	fmt.Printf("Purchased: %s\n", dashIfEmpty(eq.PurchaseDate))
	fmt.Printf("Created: %s\n", FormatTimeOrDash(eq.CreatedAt))
	if eq.Description != "" {
		fmt.Printf("Description: %s\n", eq.Description)
	}
	return nil
}

func equipmentCreate(ctx context.Context, a *app, args []string) error {
	payload := api.EquipmentPayload{Status: api.EquipmentActive}
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--code":
			if i+1 >= len(args) {
				return fmt.Errorf("--code requires a value")
			}
			payload.EquipmentCode = args[i+1]
			i++
		case "--name":
			if i+1 >= len(args) {
				return fmt.Errorf("--name requires a value")
			}
			payload.Name = args[i+1]
			i++
		case "--department":
			if i+1 >= len(args) {
				return fmt.Errorf("--department requires a value")
			}
			payload.Department = args[i+1]
			i++
		case "--location":
			if i+1 >= len(args) {
				return fmt.Errorf("--location requires a value")
			}
			payload.Location = args[i+1]
			i++
		case "--status":
			if i+1 >= len(args) {
				return fmt.Errorf("--status requires a value")
			}
			payload.Status = api.EquipmentStatus(args[i+1])
			i++
		case "--description":
			if i+1 >= len(args) {
				return fmt.Errorf("--description requires a value")
			}
			payload.Description = args[i+1]
			i++
		default:
			return fmt.Errorf("unknown flag: %s", args[i])
		}
	}

	if payload.EquipmentCode == "" || payload.Name == "" {
		return fmt.Errorf("--code and --name are required")
	}

	eq, err := a.client.CreateEquipment(ctx, payload)
	if err != nil {
		return err
	}
	if a.cfg.jsonOutput {
		return PrintJSON(os.Stdout, eq)
	}
	fmt.Printf("Equipment created: %s (id %d)\n", eq.EquipmentCode, eq.ID)
	return nil
}

func equipmentDelete(ctx context.Context, a *app, rawID string) error {
	id, err := parseID(rawID)
	if err != nil {
		return err
	}
	if err := a.client.DeleteEquipment(ctx, id); err != nil {
		return err
	}
	fmt.Printf("Equipment %d deleted\n", id)
	return nil
}

func equipmentHistory(ctx context.Context, a *app, rawID string) error {
	id, err := parseID(rawID)
	if err != nil {
		return err
	}
	reqs, err := a.client.EquipmentMaintenanceHistory(ctx, id)
	if err != nil {
		return err
	}
	if a.cfg.jsonOutput {
		return PrintJSON(os.Stdout, reqs)
	}
	renderRequestTable(reqs)
	return nil
}

func equipmentStats(ctx context.Context, a *app, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("usage: maintdesk equipment stats")
	}
	stats, err := a.client.EquipmentStatistics(ctx)
	if err != nil {
		return err
	}
	if a.cfg.jsonOutput {
		return PrintJSON(os.Stdout, stats)
	}

	headers := []string{"STATUS", "COUNT"}
	rows := [][]string{
		{ColorStatus("ACTIVE"), strconv.Itoa(stats.Active)},
		{ColorStatus("UNDER_REPAIR"), strconv.Itoa(stats.UnderRepair)},
		{ColorStatus("OUT_OF_SERVICE"), strconv.Itoa(stats.OutOfService)},
		{"total", strconv.Itoa(stats.TotalEquipment)},
	}
	RenderTable(os.Stdout, headers, rows)
	return nil
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id: %s", raw)
	}
	return id, nil
}
