package main

import (
	"bufio"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const logo = `  _____
 |  __ \
 | |  | | ___  ___ _ __ ___   ___  ___
 | |  | |/ _ \/ __| '_ ` + "`" + ` _ \ / _ \/ __|
 | |__| |  __/\__ \ | | | | | (_) \__ \
 |_____/ \___||___/_| |_| |_|\___/|___/`

const eula = ` = COPYRIGHT =
Desmos Bezier Renderer is licensed under the GNU General Public License. It is in no way, shape, or form endorsed by or associated with Desmos, Inc.

 = EULA =
By using Desmos Bezier Renderer, you agree to comply to the Desmos Terms of Service (https://www.desmos.com/terms). The Software and related documentation are provided "AS IS" and without any warranty of any kind.`

const separator = "-----------------------------"

var (
	logoStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#2464b4")).Bold(true)
	titleStyle = lipgloss.NewStyle().Bold(true).PaddingLeft(19)
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#2464b4")).
			Padding(0, 1).
			Width(78)
	readyStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("#3fa34d")).
			Padding(0, 2).
			Bold(true)
)

func printBanner(w io.Writer) {
	fmt.Fprintln(w, logoStyle.Render(logo))
	fmt.Fprintln(w, titleStyle.Render("BEZIER RENDERER"))
	fmt.Fprintln(w, boxStyle.Render(eula))
}

// askEULA prompts until the answer is y or n. End of input counts as n.
func askEULA(r io.Reader, w io.Writer) bool {
	in := bufio.NewScanner(r)
	for {
		fmt.Fprint(w, strings.Repeat(" ", 38)+"Agree (y/n)? ")
		if !in.Scan() {
			fmt.Fprintln(w)
			return false
		}
		switch strings.TrimSpace(in.Text()) {
		case "y":
			return true
		case "n":
			return false
		}
	}
}

func printReady(w io.Writer, url string) {
	fmt.Fprintln(w, readyStyle.Render("GO CHECK OUT YOUR RENDER NOW AT:\n"+url))
	fmt.Fprintln(w, "=== SERVER LOG (Ignore if not dev) ===")
}

func browserCommand(goos, url string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{url}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}
	default:
		return "xdg-open", []string{url}
	}
}

func openBrowser(url string) error {
	name, args := browserCommand(runtime.GOOS, url)
	return exec.Command(name, args...).Start()
}
