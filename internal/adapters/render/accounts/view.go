package accounts

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/nikitaclicks/decky-multi-user/internal/domain"
)

type RenderOptions struct {
	Now time.Time
	// AutoLoginUser is the login name the client will sign in with on its
	// next start; empty when unset.
	AutoLoginUser string
	// Personas overrides the stored persona names with freshly fetched
	// ones, keyed by steamid. Missing entries fall back to the file.
	Personas map[domain.SteamID]string
}

func renderView(accounts []domain.Account, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("Steam Login Accounts"),
		s.header.Render(fmt.Sprintf("accounts: %d", len(accounts))),
	}

	if len(accounts) == 0 {
		lines = append(lines, s.empty.Render("No login accounts found."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, account := range accounts {
		lines = append(lines, s.section.Render(renderAccount(account, opts, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderAccount(account domain.Account, opts RenderOptions, s styles) string {
	title := []string{
		s.account.Render(personaFor(account, opts)),
		" ",
		s.login.Render(fmt.Sprintf("(%s)", account.AccountName)),
		" ",
		s.id.Render(string(account.SteamID)),
	}

	if account.MostRecent {
		title = append(title, " ", s.active.Render("[current]"))
	}
	if opts.AutoLoginUser != "" && strings.EqualFold(opts.AutoLoginUser, account.AccountName) {
		title = append(title, " ", s.autologin.Render("[auto-login]"))
	}

	parts := []string{
		lipgloss.JoinHorizontal(lipgloss.Top, title...),
		s.detail.Render("last login: " + formatLastLogin(account.Timestamp, opts.Now)),
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func personaFor(account domain.Account, opts RenderOptions) string {
	if persona, ok := opts.Personas[account.SteamID]; ok && strings.TrimSpace(persona) != "" {
		return persona
	}
	return account.PersonaName
}

func formatLastLogin(unixSeconds int64, now time.Time) string {
	if unixSeconds <= 0 {
		return "never"
	}

	at := time.Unix(unixSeconds, 0)
	if now.IsZero() {
		return at.Format("15:04 on 02 Jan 2006")
	}
	if at.After(now) {
		return "just now"
	}

	elapsed := now.Sub(at)
	switch {
	case elapsed < time.Minute:
		return "just now"
	case elapsed < time.Hour:
		minutes := int(elapsed.Minutes())
		return fmt.Sprintf("%d %s ago", minutes, pluralize(minutes, "minute"))
	case elapsed < 24*time.Hour:
		hours := int(elapsed.Hours())
		return fmt.Sprintf("%d %s ago (%s)", hours, pluralize(hours, "hour"), at.Format("15:04"))
	default:
		days := int(math.Floor(elapsed.Hours() / 24))
		return fmt.Sprintf("%d %s ago (%s)", days, pluralize(days, "day"), at.Format("02 Jan 2006"))
	}
}

func pluralize(n int, unit string) string {
	if n == 1 {
		return unit
	}
	return unit + "s"
}
