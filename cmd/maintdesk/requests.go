package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/maintdesk/maintdesk/internal/api"
)

func runRequests(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: maintdesk requests <list|get|create|delete|status|assign|urgent|stats> [args]")
	}

	switch args[0] {
	case "list", "ls":
		return requestsList(ctx, a, args[1:])
	case "get", "show":
		if len(args) != 2 {
			return fmt.Errorf("usage: maintdesk requests get <id>")
		}
		return requestsGet(ctx, a, args[1])
	case "create":
		return requestsCreate(ctx, a, args[1:])
	case "delete", "rm":
		if len(args) != 2 {
			return fmt.Errorf("usage: maintdesk requests delete <id>")
		}
		return requestsDelete(ctx, a, args[1])
	case "status":
		if len(args) < 3 {
			return fmt.Errorf("usage: maintdesk requests status <id> <status> [comment]")
		}
		comment := strings.Join(args[3:], " ")
		return requestsStatus(ctx, a, args[1], args[2], comment)
	case "assign":
		if len(args) < 3 {
			return fmt.Errorf("usage: maintdesk requests assign <id> <technician-id> [comment]")
		}
		comment := strings.Join(args[3:], " ")
		return requestsAssign(ctx, a, args[1], args[2], comment)
	case "urgent":
		return requestsUrgent(ctx, a, args[1:])
	case "stats":
		return requestsStats(ctx, a, args[1:])
	default:
		return fmt.Errorf("unknown requests command: %s", args[0])
	}
}

func requestsList(ctx context.Context, a *app, args []string) error {
	f := api.RequestFilters{}
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--status":
			if i+1 >= len(args) {
				return fmt.Errorf("--status requires a value")
			}
			f.Status = api.RequestStatus(strings.ToUpper(args[i+1]))
			i++
		case "--priority":
			if i+1 >= len(args) {
				return fmt.Errorf("--priority requires a value")
			}
			f.Priority = api.Priority(strings.ToUpper(args[i+1]))
			i++
		case "--equipment":
			if i+1 >= len(args) {
				return fmt.Errorf("--equipment requires a value")
			}
			id, err := parseID(args[i+1])
			if err != nil {
				return err
			}
			f.Equipment = id
			i++
		case "--mine":
			f.MyRequests = true
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

	reqs, err := a.client.ListRequests(ctx, f)
	if err != nil {
		return err
	}
	if a.cfg.jsonOutput {
		return PrintJSON(os.Stdout, reqs)
	}
	renderRequestTable(reqs)
	return nil
}

func renderRequestTable(reqs []api.MaintenanceRequest) {
	headers := []string{"ID", "CODE", "EQUIPMENT", "PROBLEM", "PRIORITY", "STATUS", "TECHNICIAN", "CREATED"}
	rows := make([][]string, 0, len(reqs))
	for _, r := range reqs {
		rows = append(rows, []string{
			strconv.FormatInt(r.ID, 10),
			r.RequestCode,
			Truncate(dashIfEmpty(r.EquipmentName), 20),
			Truncate(r.ProblemDescription, 32),
			ColorPriority(string(r.Priority)),
			ColorStatus(string(r.Status)),
			Truncate(dashIfEmpty(r.TechnicianName), 16),
			FormatTimeOrDash(r.CreatedAt),
		})
	}
	RenderTable(os.Stdout, headers, rows)
	fmt.Fprintf(os.Stdout, "\nTotal: %d requests\n", len(reqs))
}

func requestsGet(ctx context.Context, a *app, rawID string) error {
	id, err := parseID(rawID)
	if err != nil {
		return err
	}
	r, err := a.client.GetRequest(ctx, id)
	if err != nil {
		return err
	}
	if a.cfg.jsonOutput {
		return PrintJSON(os.Stdout, r)
	}

	fmt.Printf("ID: %d\n", r.ID)
	fmt.Printf("Code: %s\n", r.RequestCode)
	fmt.Printf("Equipment: %s (id %d)\n", dashIfEmpty(r.EquipmentName), r.Equipment)
	fmt.Printf("Requester: %s\n", dashIfEmpty(r.RequesterName))
	fmt.Printf("Priority: %s\n", ColorPriority(string(r.Priority)))
	fmt.Printf("Status: %s\n", ColorStatus(string(r.Status)))
	if r.AssignedTechnician != 0 {
		fmt.Printf("Technician: %s (id %d)\n", dashIfEmpty(r.TechnicianName), r.AssignedTechnician)
	} else {
		fmt.Printf("Technician: unassigned\n")
	}
	fmt.Printf("Created: %s\n", FormatTimeOrDash(r.CreatedAt))
	if r.CompletedAt != nil {
		fmt.Printf("Completed: %s\n", FormatTimeOrDash(*r.CompletedAt))
	}
	fmt.Printf("\nProblem:\n%s\n", r.ProblemDescription)
	return nil
}

func requestsCreate(ctx context.Context, a *app, args []string) error {
	payload := api.RequestPayload{Priority: api.PriorityMedium}
	imagePath := ""
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--equipment":
			if i+1 >= len(args) {
				return fmt.Errorf("--equipment requires a value")
			}
			id, err := parseID(args[i+1])
			if err != nil {
				return err
			}
			payload.Equipment = id
			i++
		case "--problem":
			if i+1 >= len(args) {
				return fmt.Errorf("--problem requires a value")
			}
			payload.ProblemDescription = args[i+1]
			i++
		case "--priority":
			if i+1 >= len(args) {
				return fmt.Errorf("--priority requires a value")
			}
			payload.Priority = api.Priority(strings.ToUpper(args[i+1]))
			i++
		case "--image":
			if i+1 >= len(args) {
				return fmt.Errorf("--image requires a value")
			}
			imagePath = args[i+1]
			i++
		default:
			return fmt.Errorf("unknown flag: %s", args[i])
		}
	}

	if payload.Equipment == 0 || payload.ProblemDescription == "" {
		return fmt.Errorf("--equipment and --problem are required")
	}

	var r *api.MaintenanceRequest
	var err error
	if imagePath != "" {
		file, openErr := os.Open(imagePath)
		if openErr != nil {
			return fmt.Errorf("failed to open image: %w", openErr)
		}
		defer func() { _ = file.Close() }()
		r, err = a.client.CreateRequestWithImage(ctx, payload, filepath.Base(imagePath), file)
	} else {
		r, err = a.client.CreateRequest(ctx, payload)
	}
	if err != nil {
		return err
	}

	if a.cfg.jsonOutput {
		return PrintJSON(os.Stdout, r)
	}
	fmt.Printf("Request created: %s (id %d)\n", r.RequestCode, r.ID)
	return nil
}

func requestsDelete(ctx context.Context, a *app, rawID string) error {
	id, err := parseID(rawID)
	if err != nil {
		return err
	}
	if err := a.client.DeleteRequest(ctx, id); err != nil {
		return err
	}
	fmt.Printf("Request %d deleted\n", id)
	return nil
}

func requestsStatus(ctx context.Context, a *app, rawID, rawStatus, comment string) error {
	id, err := parseID(rawID)
	if err != nil {
		return err
	}
	status := api.RequestStatus(strings.ToUpper(rawStatus))
	known := false
	for _, s := range api.RequestStatuses() {
		if s == status {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("unknown status: %s", rawStatus)
	}

	r, err := a.client.UpdateRequestStatus(ctx, id, status, comment)
	if err != nil {
		return err
	}
	if a.cfg.jsonOutput {
		return PrintJSON(os.Stdout, r)
	}
	fmt.Printf("Request %s is now %s\n", r.RequestCode, ColorStatus(string(r.Status)))
	return nil
}

func requestsAssign(ctx context.Context, a *app, rawID, rawTechID, comment string) error {
	id, err := parseID(rawID)
	if err != nil {
		return err
	}
	techID, err := parseID(rawTechID)
	if err != nil {
		return err
	}

	r, err := a.client.AssignTechnician(ctx, id, techID, comment)
	if err != nil {
		return err
	}
	if a.cfg.jsonOutput {
		return PrintJSON(os.Stdout, r)
	}
	fmt.Printf("Request %s assigned to %s\n", r.RequestCode, dashIfEmpty(r.TechnicianName))
	return nil
}

func requestsUrgent(ctx context.Context, a *app, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("usage: maintdesk requests urgent")
	}
	reqs, err := a.client.UrgentRequests(ctx)
	if err != nil {
		return err
	}
	if a.cfg.jsonOutput {
		return PrintJSON(os.Stdout, reqs)
	}
	renderRequestTable(reqs)
	return nil
}

func requestsStats(ctx context.Context, a *app, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("usage: maintdesk requests stats")
	}
	stats, err := a.client.RequestStatistics(ctx)
	if err != nil {
		return err
	}
	if a.cfg.jsonOutput {
		return PrintJSON(os.Stdout, stats)
	}

	headers := []string{"STATUS", "COUNT"}
	rows := [][]string{
		{ColorStatus("PENDING"), strconv.Itoa(stats.PendingRequests)},
		{ColorStatus("ASSIGNED"), strconv.Itoa(stats.AssignedRequests)},
		{ColorStatus("IN_PROGRESS"), strconv.Itoa(stats.InProgressRequests)},
		{ColorStatus("COMPLETED"), strconv.Itoa(stats.CompletedRequests)},
		{ColorStatus("CANCELLED"), strconv.Itoa(stats.CancelledRequests)},
		{"high_priority", strconv.Itoa(stats.HighPriorityRequests)},
		{"total", strconv.Itoa(stats.TotalRequests)},
	}
	RenderTable(os.Stdout, headers, rows)
	if stats.AverageCompletionTime > 0 {
		fmt.Fprintf(os.Stdout, "\nAverage completion: %.1f hours\n", stats.AverageCompletionTime)
	}
	return nil
}
