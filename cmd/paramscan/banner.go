package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

const bannerArt = `
  _ __   __ _ _ __ __ _ _ __ ___  ___  ___ __ _ _ __  
 | '_ \ / _' | '__/ _' | '_ ' _ \/ __|/ __/ _' | '_ \ 
 | |_) | (_| | | | (_| | | | | | \__ \ (_| (_| | | | |
 | .__/ \__,_|_|  \__,_|_| |_| |_|___/\___\__,_|_| |_|
 |_|
`

// printBanner writes the startup banner. Colors are dropped when stdout is
// not a terminal or NO_COLOR is set.
func printBanner(w io.Writer) {
	color.New(color.FgHiGreen).Fprint(w, bannerArt)
	yellow := color.New(color.FgHiYellow)
	yellow.Fprintln(w, "paramscan: crawls a site and extracts its unique query-parameter signatures.")
	yellow.Fprintln(w, "For authorized security assessments only.")
	fmt.Fprintln(w)
}
