package ui

import (
	"github.com/pterm/pterm"
)

// Confirm asks the user to confirm with y/n, defaulting to yes
func Confirm(text string) (bool, error) {
	return pterm.DefaultInteractiveConfirm.
		WithDefaultText(text).
		WithDefaultValue(true).
		Show()
}

// WaitForEnter blocks until the user presses enter
func WaitForEnter(text string) {
	_, _ = pterm.DefaultInteractiveTextInput.
		WithDefaultText(text).
		Show()
}

// Section prints a section header
func Section(title string) {
	pterm.DefaultSection.Println(title)
}

// KeyValues prints an aligned list of key/value pairs, in the given order
func KeyValues(pairs [][2]string) {
	data := pterm.TableData{}
	for _, pair := range pairs {
		data = append(data, []string{pair[0], pair[1]})
	}
	err := pterm.DefaultTable.WithData(data).Render()
	if err != nil {
		for _, pair := range pairs {
			Printfln("%s: %s", pair[0], pair[1])
		}
	}
}
