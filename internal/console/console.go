// Package console runs the hotel terminal: a guest panel and a
// role-gated admin panel over the service layer.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/pizza-nz/hotel-service/internal/service"
)

// Services groups the operations the terminal dispatches to.
type Services struct {
	Auth         *service.Authenticator
	Sessions     *service.SessionService
	Accounts     *service.AccountService
	Reservations *service.ReservationService
	Matcher      *service.ReservationMatcher
	Catalog      *service.CatalogService
	Pricing      *service.PricingResolver
	Discounts    *service.DiscountService
	Orders       *service.OrderService
}

// Options holds the static values shown to guests and operators.
type Options struct {
	HotelName string
	Clock     service.Clock
}

// Console is one single-operator terminal session.
type Console struct {
	in   Prompter
	out  io.Writer
	svc  Services
	opts Options
	log  *slog.Logger
}

// New creates a console reading from in and writing to out.
func New(in Prompter, out io.Writer, svc Services, opts Options, log *slog.Logger) *Console {
	if opts.Clock == nil {
		opts.Clock = service.SystemClock
	}
	return &Console{
		in:   in,
		out:  out,
		svc:  svc,
		opts: opts,
		log:  log,
	}
}

// Run shows the main menu until the operator exits or input ends.
func (c *Console) Run(ctx context.Context) error {
	err := c.mainMenu(ctx)
	if errors.Is(err, io.EOF) || errors.Is(err, ErrAborted) {
		c.println()
		c.println("Exiting Program")
		return nil
	}
	return err
}

func (c *Console) mainMenu(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		c.println(titleStyle.Render(fmt.Sprintf("Welcome to %s!", c.opts.HotelName)))
		c.println("Please select an option:")
		c.println()
		c.println("1. Customer")
		c.println("2. Admin")
		c.println("3. Exit")

		choice, err := c.ask("Enter your choice: ")
		if err != nil {
			return err
		}

		switch choice {
		case "1":
			err = c.customerPanel(ctx)
		case "2":
			err = c.adminPanel(ctx)
		case "3":
			c.println("Exiting Program")
			return nil
		default:
			c.println("Invalid choice. Please try again.")
		}
		if err != nil {
			return err
		}
	}
}

func (c *Console) println(a ...interface{}) {
	fmt.Fprintln(c.out, a...)
}

func (c *Console) printf(format string, a ...interface{}) {
	fmt.Fprintf(c.out, format+"\n", a...)
}

// ask prompts and trims the answer.
func (c *Console) ask(prompt string) (string, error) {
	answer, err := c.in.Prompt(prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}

func (c *Console) askSecret(prompt string) (string, error) {
	answer, err := c.in.PasswordPrompt(prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}

// confirm asks a Y/N question; anything but y or yes is no.
func (c *Console) confirm(prompt string) (bool, error) {
	answer, err := c.ask(prompt)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func (c *Console) askInt(prompt string) (int, bool, error) {
	answer, err := c.ask(prompt)
	if err != nil {
		return 0, false, err
	}
	n, convErr := strconv.Atoi(answer)
	if convErr != nil {
		return 0, false, nil
	}
	return n, true, nil
}

func (c *Console) askFloat(prompt string) (float64, bool, error) {
	answer, err := c.ask(prompt)
	if err != nil {
		return 0, false, err
	}
	f, convErr := strconv.ParseFloat(answer, 64)
	if convErr != nil {
		return 0, false, nil
	}
	return f, true, nil
}

// fail prints the operator-facing line for a service error and reports
// whether the error was one. Store failures are logged and abort only the
// current operation.
func (c *Console) fail(err error, notFound string) bool {
	var validation *service.ValidationError
	switch {
	case err == nil:
		return false
	case errors.Is(err, service.ErrNotFound):
		c.println(notFound)
	case errors.As(err, &validation):
		c.printf("Invalid %s: %s.", validation.Field, validation.Reason)
	case errors.Is(err, service.ErrConflict):
		c.println("That record already exists.")
	case errors.Is(err, service.ErrStoreUnavailable):
		c.log.Error("store unavailable", "error", err)
		c.println(alertStyle.Render("Database connection failed. Returning to menu."))
	default:
		c.log.Error("operation failed", "error", err)
		c.printf("Error: %v", err)
	}
	return true
}

// money formats an amount for display; stored values keep full precision.
func money(amount float64) string {
	return fmt.Sprintf("$%.2f", amount)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
