// ABOUTME: bookings and calls subcommands that read the SQLite ledger
// ABOUTME: Output is a tab-aligned table, newest first

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/2389/rently-gateway/internal/store"
)

const defaultListLimit = 20

// parseLimit reads the optional positional limit argument.
func parseLimit(args []string) (int, error) {
	switch len(args) {
	case 0:
		return defaultListLimit, nil
	case 1:
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return 0, fmt.Errorf("invalid limit %q", args[0])
		}
		return n, nil
	default:
		return 0, errors.New("too many arguments")
	}
}

func openLedger() (*store.SQLiteStore, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, err
	}
	path := cfg.Store.Path
	if envPath := os.Getenv("RENTLY_DB_PATH"); envPath != "" {
		path = envPath
	}
	if path == "" {
		return nil, errors.New("ledger disabled: store.path is not configured")
	}
	s, err := store.NewSQLiteStore(path)
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}
	return s, nil
}

func runBookings(ctx context.Context, args []string) error {
	limit, err := parseLimit(args)
	if err != nil {
		return err
	}
	s, err := openLedger()
	if err != nil {
		return err
	}
	defer s.Close()

	bookings, err := s.ListBookings(ctx, limit)
	if err != nil {
		return fmt.Errorf("listing bookings: %w", err)
	}
	printBookings(os.Stdout, bookings)
	return nil
}

func runCalls(ctx context.Context, args []string) error {
	limit, err := parseLimit(args)
	if err != nil {
		return err
	}
	s, err := openLedger()
	if err != nil {
		return err
	}
	defer s.Close()

	calls, err := s.ListToolCalls(ctx, limit)
	if err != nil {
		return fmt.Errorf("listing tool calls: %w", err)
	}
	printCalls(os.Stdout, calls)
	return nil
}

func printBookings(out io.Writer, bookings []store.BookingRecord) {
	if len(bookings) == 0 {
		fmt.Fprintln(out, "  No bookings recorded")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  BOOKING\tKIND\tCATEGORY\tFROM\tTO\tTOTAL\tEMAIL\tCREATED")
	fmt.Fprintln(w, "  -------\t----\t--------\t----\t--\t-----\t-----\t-------")
	for _, b := range bookings {
		kind := "booking"
		if b.IsQuotation {
			kind = "quote"
		}
		fmt.Fprintf(w, "  %d\t%s\t%s\t%s\t%s\t%.2f\t%s\t%s\n",
			b.BookingID, kind, truncate(b.Category, 20), b.FromDate, b.ToDate, b.Total,
			truncate(b.Email, 28), b.CreatedAt.Local().Format("Jan 02 15:04"))
	}
	w.Flush()
}

func printCalls(out io.Writer, calls []store.ToolCall) {
	if len(calls) == 0 {
		fmt.Fprintln(out, "  No tool calls recorded")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  TOOL\tSTATUS\tDURATION\tTRANSPORT\tSUBJECT\tSESSION\tCREATED")
	fmt.Fprintln(w, "  ----\t------\t--------\t---------\t-------\t-------\t-------")
	for _, c := range calls {
		status := color.GreenString("ok")
		if c.IsError {
			status = color.RedString("error")
		}
		subject := c.Subject
		if subject == "" {
			subject = "-"
		}
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			c.Tool, status, c.Duration.Round(time.Millisecond), c.Transport,
			truncate(subject, 20), truncate(c.SessionID, 12), c.CreatedAt.Local().Format("Jan 02 15:04"))
	}
	w.Flush()
}

// truncate shortens s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
