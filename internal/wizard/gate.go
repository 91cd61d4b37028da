package wizard

import (
	"crypto/subtle"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// CodeLength is the number of OTP input cells.
const CodeLength = 6

// Token is the code issued by the OTP-send call, scoped to one wizard.
type Token struct {
	Code      string    `json:"code"`
	Phone     string    `json:"phone"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// Gate models the six single-character OTP cells and the issued token.
type Gate struct {
	Cells [CodeLength]string `json:"cells"`
	Focus int                `json:"focus"`
	Token *Token             `json:"token,omitempty"`
}

// Issue stores a freshly sent code and clears any previous entry.
func (g *Gate) Issue(code, phone string, expiresAt time.Time) {
	g.Token = &Token{Code: code, Phone: phone, ExpiresAt: expiresAt}
	g.Cells = [CodeLength]string{}
	g.Focus = 0
}

// Input writes value into cell i. Only the last character is kept. A digit
// moves focus to the next cell.
func (g *Gate) Input(i int, value string) {
	if i < 0 || i >= CodeLength {
		return
	}
	if value == "" {
		g.Cells[i] = ""
		return
	}
	r, _ := utf8.DecodeLastRuneInString(value)
	g.Cells[i] = string(r)
	g.Focus = i
	if unicode.IsDigit(r) && i < CodeLength-1 {
		g.Focus = i + 1
	}
}

// Backspace clears cell i. On an already empty cell it moves focus to the
// previous cell instead.
func (g *Gate) Backspace(i int) {
	if i < 0 || i >= CodeLength {
		return
	}
	g.Focus = i
	if g.Cells[i] != "" {
		g.Cells[i] = ""
		return
	}
	if i > 0 {
		g.Focus = i - 1
	}
}

// Paste fills every cell when value has exactly CodeLength characters and
// focuses the last cell. It reports whether the paste was applied.
func (g *Gate) Paste(value string) bool {
	value = strings.TrimSpace(value)
	if utf8.RuneCountInString(value) != CodeLength {
		return false
	}
	i := 0
	for _, r := range value {
		g.Cells[i] = string(r)
		i++
	}
	g.Focus = CodeLength - 1
	return true
}

// Entered concatenates the cells.
func (g Gate) Entered() string {
	return strings.Join(g.Cells[:], "")
}

// Complete reports whether every cell holds a character.
func (g Gate) Complete() bool {
	for _, c := range g.Cells {
		if c == "" {
			return false
		}
	}
	return true
}

// Verify compares the entered code with the issued token. Entered digits are
// left in place on failure. A token without a code (the OTP service withheld
// it) accepts any complete entry and leaves the check to the intake service.
func (g *Gate) Verify(now time.Time) (string, error) {
	entered := g.Entered()
	if len(entered) < CodeLength || !g.Complete() {
		return "", ErrIncompleteCode
	}
	if g.Token == nil {
		return "", ErrNoCode
	}
	if !g.Token.ExpiresAt.IsZero() && now.After(g.Token.ExpiresAt) {
		return "", ErrCodeExpired
	}
	if g.Token.Code == "" {
		return entered, nil
	}
	if subtle.ConstantTimeCompare([]byte(entered), []byte(g.Token.Code)) != 1 {
		return "", ErrInvalidCode
	}
	return entered, nil
}
