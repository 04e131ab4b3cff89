// Package commands turns command lines sent through the command channel
// into service calls and renders their replies.
package commands

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/mediagate/internal/common"
	"github.com/dmitrijs2005/mediagate/internal/logging"
	"github.com/dmitrijs2005/mediagate/internal/server/models"
	"github.com/dmitrijs2005/mediagate/internal/server/services"
)

type Verifier interface {
	Verify(ctx context.Context, caller, userID string, days int) (*models.Verification, error)
	Extend(ctx context.Context, caller, userID string, days int) (*models.Verification, error)
	Delete(ctx context.Context, caller, userID string) (int64, error)
	List(ctx context.Context, caller string) ([]services.VerifiedUser, error)
}

type Minter interface {
	IsOwner(userID string) bool
	Mint(ctx context.Context, userID string, isOwner bool) (*models.Token, error)
	Revoke(ctx context.Context, caller, token string) error
}

type Ledger interface {
	Summarize(ctx context.Context, caller, userID string) (*models.UsageSummary, error)
	Stats(ctx context.Context, caller string) (*models.Stats, error)
}

type Exporter interface {
	ExportUsage(ctx context.Context, caller string) (string, error)
}

const (
	replyOwnerOnly   = "Owner only command."
	replyUnknown     = "Unknown command. Send help for the command list."
	replyNotVerified = "You are not verified. Ask the owner for access."
	replyExpired     = "Your verification has expired. Ask the owner to renew it."
)

type handlerFunc func(ctx context.Context, caller string, args []string) (string, error)

type command struct {
	usage   string
	summary string
	admin   bool
	run     handlerFunc
}

// Dispatcher routes a command line to the matching handler. Replies are
// user-visible text; the error is reserved for failures the caller cannot
// fix, such as storage errors.
type Dispatcher struct {
	verifier Verifier
	minter   Minter
	ledger   Ledger
	exporter Exporter
	log      logging.Logger

	commands map[string]*command
	aliases  map[string]string
	order    []string
}

func NewDispatcher(v Verifier, m Minter, l Ledger, e Exporter, log logging.Logger) *Dispatcher {
	d := &Dispatcher{
		verifier: v,
		minter:   m,
		ledger:   l,
		exporter: e,
		log:      log,
		aliases: map[string]string{
			"cmds":   "help",
			"list":   "list-verified",
			"revoke": "revoke-token",
			"stat":   "stats",
		},
	}

	d.register("verify", &command{usage: "verify USER_ID DAYS", summary: "grant USER_ID access for DAYS days", admin: true, run: d.verify})
	d.register("extend", &command{usage: "extend USER_ID DAYS", summary: "add DAYS days to USER_ID's access", admin: true, run: d.extend})
	d.register("delete-user", &command{usage: "delete-user USER_ID", summary: "remove USER_ID and revoke their tokens", admin: true, run: d.deleteUser})
	d.register("list-verified", &command{usage: "list-verified", summary: "list verified users", admin: true, run: d.listVerified})
	d.register("revoke-token", &command{usage: "revoke-token TOKEN", summary: "revoke an access token", admin: true, run: d.revokeToken})
	d.register("usage", &command{usage: "usage USER_ID", summary: "show per-platform usage of USER_ID", admin: true, run: d.usage})
	d.register("stats", &command{usage: "stats", summary: "show global statistics", admin: true, run: d.stats})
	d.register("export-usage", &command{usage: "export-usage", summary: "upload a usage report to object storage", admin: true, run: d.exportUsage})
	d.register("help", &command{usage: "help", summary: "show this list", admin: true, run: d.help})
	d.register("mint-token", &command{usage: "mint-token", summary: "get a new access token (revokes your previous one)", run: d.mintToken})

	return d
}

func (d *Dispatcher) register(name string, c *command) {
	if d.commands == nil {
		d.commands = make(map[string]*command)
	}
	d.commands[name] = c
	d.order = append(d.order, name)
}

// Handle executes line on behalf of caller.
func (d *Dispatcher) Handle(ctx context.Context, caller, line string) (string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return replyUnknown, nil
	}

	name := strings.ToLower(strings.TrimPrefix(fields[0], "/"))
	if i := strings.IndexByte(name, '@'); i >= 0 {
		name = name[:i]
	}
	if alias, ok := d.aliases[name]; ok {
		name = alias
	}

	cmd, ok := d.commands[name]
	if !ok {
		return replyUnknown, nil
	}
	if cmd.admin && !d.minter.IsOwner(caller) {
		d.log.Warn(ctx, "owner command refused", "caller", caller, "command", name)
		return replyOwnerOnly, nil
	}

	reply, err := cmd.run(ctx, caller, fields[1:])
	if err != nil {
		return d.replyForError(ctx, cmd, name, err)
	}
	return reply, nil
}

func (d *Dispatcher) replyForError(ctx context.Context, cmd *command, name string, err error) (string, error) {
	switch {
	case errors.Is(err, common.ErrorUnauthorized):
		return replyOwnerOnly, nil
	case errors.Is(err, common.ErrInvalidArgument):
		return "Usage:\n" + cmd.usage, nil
	case errors.Is(err, common.ErrNotVerified):
		return replyNotVerified, nil
	case errors.Is(err, common.ErrVerificationExpired):
		return replyExpired, nil
	case errors.Is(err, common.ErrorNotFound):
		if name == "revoke-token" {
			return "Token not found.", nil
		}
		return "User not found.", nil
	}
	d.log.Error(ctx, "command failed", "command", name, "error", err)
	return "", err
}

func parseUserDays(args []string) (string, int, error) {
	if len(args) != 2 {
		return "", 0, common.ErrInvalidArgument
	}
	days, err := strconv.Atoi(args[1])
	if err != nil || days <= 0 {
		return "", 0, common.ErrInvalidArgument
	}
	return args[0], days, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04 UTC")
}

func (d *Dispatcher) verify(ctx context.Context, caller string, args []string) (string, error) {
	userID, days, err := parseUserDays(args)
	if err != nil {
		return "", err
	}
	v, err := d.verifier.Verify(ctx, caller, userID, days)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("User %s verified for %d days.\nExpires: %s", v.UserID, days, formatTime(v.Expires)), nil
}

func (d *Dispatcher) extend(ctx context.Context, caller string, args []string) (string, error) {
	userID, days, err := parseUserDays(args)
	if err != nil {
		return "", err
	}
	v, err := d.verifier.Extend(ctx, caller, userID, days)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("User %s extended by %d days.\nExpires: %s", v.UserID, days, formatTime(v.Expires)), nil
}

func (d *Dispatcher) deleteUser(ctx context.Context, caller string, args []string) (string, error) {
	if len(args) != 1 {
		return "", common.ErrInvalidArgument
	}
	n, err := d.verifier.Delete(ctx, caller, args[0])
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("User %s removed. Tokens revoked: %d", args[0], n), nil
}

func (d *Dispatcher) listVerified(ctx context.Context, caller string, args []string) (string, error) {
	users, err := d.verifier.List(ctx, caller)
	if err != nil {
		return "", err
	}
	if len(users) == 0 {
		return "No verified users.", nil
	}

	var b strings.Builder
	b.WriteString("Verified users:\n")
	for i, u := range users {
		fmt.Fprintf(&b, "%d. %s | %d days | expires %s\n", i+1, u.UserID, u.DaysRemaining, formatTime(u.Expires))
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (d *Dispatcher) revokeToken(ctx context.Context, caller string, args []string) (string, error) {
	if len(args) != 1 {
		return "", common.ErrInvalidArgument
	}
	if err := d.minter.Revoke(ctx, caller, args[0]); err != nil {
		return "", err
	}
	return "Token revoked:\n" + args[0], nil
}

func (d *Dispatcher) usage(ctx context.Context, caller string, args []string) (string, error) {
	if len(args) != 1 {
		return "", common.ErrInvalidArgument
	}
	sum, err := d.ledger.Summarize(ctx, caller, args[0])
	if err != nil {
		return "", err
	}
	if sum.Total == 0 {
		return "No usage data.", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Usage of %s: %d requests\n", sum.UserID, sum.Total)
	platforms := make([]string, 0, len(sum.PerPlatform))
	for p := range sum.PerPlatform {
		platforms = append(platforms, p)
	}
	slices.Sort(platforms)
	for _, p := range platforms {
		name := p
		if name == "" {
			name = "unknown"
		}
		fmt.Fprintf(&b, "%s: %d\n", name, sum.PerPlatform[p])
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (d *Dispatcher) stats(ctx context.Context, caller string, args []string) (string, error) {
	st, err := d.ledger.Stats(ctx, caller)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Statistics\nVerified users: %d\nLive tokens: %d\nTotal requests: %d",
		st.VerifiedUsers, st.LiveTokens, st.TotalRequests), nil
}

func (d *Dispatcher) exportUsage(ctx context.Context, caller string, args []string) (string, error) {
	key, err := d.exporter.ExportUsage(ctx, caller)
	if err != nil {
		return "", err
	}
	return "Usage report uploaded: " + key, nil
}

func (d *Dispatcher) help(ctx context.Context, caller string, args []string) (string, error) {
	var b strings.Builder
	b.WriteString("Commands:\n")
	for _, name := range d.order {
		c := d.commands[name]
		fmt.Fprintf(&b, "/%s - %s\n", c.usage, c.summary)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (d *Dispatcher) mintToken(ctx context.Context, caller string, args []string) (string, error) {
	tok, err := d.minter.Mint(ctx, caller, d.minter.IsOwner(caller))
	if err != nil {
		return "", err
	}

	expires := "never"
	if tok.Expires != nil {
		expires = formatTime(*tok.Expires)
	}
	return fmt.Sprintf("Your access token:\n%s\nExpires: %s\nUse: /api/download?token=%s&url=MEDIA_LINK",
		tok.Token, expires, tok.Token), nil
}
