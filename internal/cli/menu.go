package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"atm-simulator/internal/services"

	"github.com/shopspring/decimal"
	"golang.org/x/term"
)

// Menu drives the interactive terminal loop. It is a thin wrapper around the
// session service: it prompts, parses primitive input, and renders results;
// every banking rule lives behind the service.
type Menu struct {
	session services.SessionServiceInterface
	in      *bufio.Reader
	out     io.Writer
	stdinFd int
	isTTY   bool
}

// NewMenu creates a menu reading from in and writing to out. When in is a
// terminal, PIN entry is masked.
func NewMenu(session services.SessionServiceInterface, in io.Reader, out io.Writer) *Menu {
	m := &Menu{
		session: session,
		in:      bufio.NewReader(in),
		out:     out,
		stdinFd: -1,
	}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		m.stdinFd = int(f.Fd())
		m.isTTY = true
	}
	return m
}

// Run loops until the user exits, input ends, or ctx is canceled. All three
// paths log the current account out before returning, so the LOGOUT entry and
// final persist always happen — and always on this goroutine, never
// concurrently with an in-flight operation.
func (m *Menu) Run(ctx context.Context) {
	defer m.session.Logout()

	for ctx.Err() == nil {
		m.printHeader()

		choice, err := m.readLine(ctx, "\nEnter your choice: ")
		if err != nil {
			break
		}

		if m.session.IsAuthenticated() {
			if done := m.dispatchAuthenticated(ctx, choice); done {
				fmt.Fprintln(m.out, "Thank you for using our ATM. Goodbye!")
				return
			}
		} else {
			if done := m.dispatchAnonymous(ctx, choice); done {
				fmt.Fprintln(m.out, "Thank you for using our ATM. Goodbye!")
				return
			}
		}
	}

	if ctx.Err() != nil {
		fmt.Fprintln(m.out, "\n\nATM session interrupted. Goodbye!")
	}
}

func (m *Menu) printHeader() {
	fmt.Fprintln(m.out, "\n"+strings.Repeat("=", 40))
	fmt.Fprintln(m.out, "          ATM SIMULATION")
	fmt.Fprintln(m.out, strings.Repeat("=", 40))

	if m.session.IsAuthenticated() {
		fmt.Fprintf(m.out, "Logged in as: %s\n", m.session.CurrentAccountNumber())
		fmt.Fprintf(m.out, "Balance: $%s\n", m.session.CurrentBalance().StringFixed(2))
		fmt.Fprintln(m.out, "\n1. Check Balance")
		fmt.Fprintln(m.out, "2. Withdraw Money")
		fmt.Fprintln(m.out, "3. Deposit Money")
		fmt.Fprintln(m.out, "4. Transfer Money")
		fmt.Fprintln(m.out, "5. Show Last 5 Transactions")
		fmt.Fprintln(m.out, "6. Logout")
		fmt.Fprintln(m.out, "7. Exit")
	} else {
		fmt.Fprintln(m.out, "1. Login")
		fmt.Fprintln(m.out, "2. Exit")
	}
}

func (m *Menu) dispatchAnonymous(ctx context.Context, choice string) (done bool) {
	switch choice {
	case "1":
		m.login(ctx)
	case "2":
		return true
	default:
		fmt.Fprintln(m.out, "Invalid choice! Please try again.")
	}
	return false
}

func (m *Menu) dispatchAuthenticated(ctx context.Context, choice string) (done bool) {
	switch choice {
	case "1":
		m.checkBalance()
	case "2":
		m.withdraw(ctx)
	case "3":
		m.deposit(ctx)
	case "4":
		m.transfer(ctx)
	case "5":
		m.showTransactions()
	case "6":
		m.logout()
	case "7":
		m.logout()
		return true
	default:
		fmt.Fprintln(m.out, "Invalid choice! Please try again.")
	}
	return false
}

func (m *Menu) login(ctx context.Context) {
	fmt.Fprintln(m.out, "\n=== ATM Login ===")

	accountNumber, err := m.readLine(ctx, "Enter account number: ")
	if err != nil {
		return
	}

	pin, err := m.readPIN(ctx, "Enter PIN: ")
	if err != nil {
		return
	}

	if err := m.session.Login(accountNumber, pin); err != nil {
		fmt.Fprintln(m.out, errorMessage(err))
		return
	}

	fmt.Fprintf(m.out, "Login successful! Welcome, account %s\n", accountNumber)
}

func (m *Menu) logout() {
	accountNumber := m.session.CurrentAccountNumber()
	m.session.Logout()
	fmt.Fprintf(m.out, "Goodbye! Account %s logged out.\n", accountNumber)
}

func (m *Menu) checkBalance() {
	balance, err := m.session.CheckBalance()
	if err != nil {
		fmt.Fprintln(m.out, errorMessage(err))
		return
	}
	fmt.Fprintf(m.out, "\nCurrent balance: $%s\n", balance.StringFixed(2))
}

func (m *Menu) withdraw(ctx context.Context) {
	fmt.Fprintln(m.out, "\n=== Withdraw Money ===")

	amount, ok := m.readAmount(ctx, "Enter amount to withdraw: $")
	if !ok {
		return
	}

	balance, err := m.session.Withdraw(amount)
	if err != nil {
		fmt.Fprintln(m.out, errorMessage(err))
		return
	}

	fmt.Fprintf(m.out, "Successfully withdrew $%s\n", amount.StringFixed(2))
	fmt.Fprintf(m.out, "New balance: $%s\n", balance.StringFixed(2))
}

func (m *Menu) deposit(ctx context.Context) {
	fmt.Fprintln(m.out, "\n=== Deposit Money ===")

	amount, ok := m.readAmount(ctx, "Enter amount to deposit: $")
	if !ok {
		return
	}

	balance, err := m.session.Deposit(amount)
	if err != nil {
		fmt.Fprintln(m.out, errorMessage(err))
		return
	}

	fmt.Fprintf(m.out, "Successfully deposited $%s\n", amount.StringFixed(2))
	fmt.Fprintf(m.out, "New balance: $%s\n", balance.StringFixed(2))
}

func (m *Menu) transfer(ctx context.Context) {
	fmt.Fprintln(m.out, "\n=== Transfer Money ===")

	targetAccount, err := m.readLine(ctx, "Enter target account number: ")
	if err != nil {
		return
	}

	amount, ok := m.readAmount(ctx, "Enter amount to transfer: $")
	if !ok {
		return
	}

	balance, err := m.session.Transfer(targetAccount, amount)
	if err != nil {
		fmt.Fprintln(m.out, errorMessage(err))
		return
	}

	fmt.Fprintf(m.out, "Successfully transferred $%s to account %s\n", amount.StringFixed(2), targetAccount)
	fmt.Fprintf(m.out, "New balance: $%s\n", balance.StringFixed(2))
}

func (m *Menu) showTransactions() {
	fmt.Fprintln(m.out, "\n=== Last 5 Transactions ===")

	entries, err := m.session.RecentTransactions(0)
	if err != nil {
		fmt.Fprintln(m.out, errorMessage(err))
		return
	}

	if len(entries) == 0 {
		fmt.Fprintln(m.out, "No transactions found.")
		return
	}

	for i, entry := range entries {
		fmt.Fprintf(m.out, "%d. %s - %s: $%s\n", i+1, entry.Timestamp, entry.Type, entry.Amount.StringFixed(2))
		if entry.TargetAccount != "" {
			fmt.Fprintf(m.out, "   Target: %s\n", entry.TargetAccount)
		}
	}
}

type readResult struct {
	line string
	err  error
}

// readLine prompts and reads one line. The blocking read runs on a helper
// goroutine so a canceled ctx unblocks the caller; the helper touches only
// the reader, never session state, and at most one is abandoned because a
// cancellation unwinds the whole run.
func (m *Menu) readLine(ctx context.Context, prompt string) (string, error) {
	fmt.Fprint(m.out, prompt)

	results := make(chan readResult, 1)
	go func() {
		line, err := m.in.ReadString('\n')
		results <- readResult{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-results:
		if r.err != nil && r.line == "" {
			return "", r.err
		}
		return strings.TrimSpace(r.line), nil
	}
}

// readPIN reads the PIN without echo on a terminal, falling back to a plain
// line read when stdin is not a tty.
func (m *Menu) readPIN(ctx context.Context, prompt string) (string, error) {
	if !m.isTTY {
		return m.readLine(ctx, prompt)
	}

	fmt.Fprint(m.out, prompt)

	results := make(chan readResult, 1)
	go func() {
		pin, err := term.ReadPassword(m.stdinFd)
		results <- readResult{line: string(pin), err: err}
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(m.out)
		return "", ctx.Err()
	case r := <-results:
		fmt.Fprintln(m.out)
		if r.err != nil {
			return "", r.err
		}
		return strings.TrimSpace(r.line), nil
	}
}

// readAmount parses a prompted line into a decimal. Parse failures report the
// invalid-amount message and leave state untouched, like any non-positive
// amount.
func (m *Menu) readAmount(ctx context.Context, prompt string) (decimal.Decimal, bool) {
	line, err := m.readLine(ctx, prompt)
	if err != nil {
		return decimal.Zero, false
	}

	amount, err := decimal.NewFromString(line)
	if err != nil {
		fmt.Fprintln(m.out, "Invalid amount! Please enter a valid number.")
		return decimal.Zero, false
	}
	return amount, true
}

func errorMessage(err error) string {
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		return "Invalid account number or PIN!"
	case errors.Is(err, services.ErrTooManyLoginAttempts):
		return "Too many failed login attempts! Please wait and try again."
	case errors.Is(err, services.ErrNotAuthenticated):
		return "Please login first!"
	case errors.Is(err, services.ErrInvalidAmount):
		return "Amount must be positive!"
	case errors.Is(err, services.ErrInsufficientFunds):
		return "Insufficient funds!"
	case errors.Is(err, services.ErrTargetNotFound):
		return "Target account not found!"
	case errors.Is(err, services.ErrSameAccountTransfer):
		return "Cannot transfer to your own account!"
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}
