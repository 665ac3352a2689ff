// Package ui implements the console confirmations guarding destructive schema operations.
package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// writeDanger prints the reset warning for dbName as a bordered banner.
func writeDanger(w io.Writer, dbName string) {
	r := lipgloss.NewRenderer(w)
	box := r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("196")).
		Padding(0, 2)
	title := r.NewStyle().Bold(true).Foreground(lipgloss.Color("196")).Render("DANGER")

	body := fmt.Sprintf("%s\n\nAbout to DROP and RECREATE the star schema in database %q.\n"+
		"Every loaded song, artist, user, time and songplay row will be lost.", title, dbName)
	fmt.Fprintln(w)
	fmt.Fprintln(w, box.Render(body))
}
