package ui

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/samber/mo"

	"github.com/fr4nk3nst1ner/skillsleuth/internal/utils"
)

const bannerText = `
 ___ _  _____ _    _    ___ _    ___ _   _ _____ _  _
/ __| |/ /_ _| |  | |  / __| |  | __| | | |_   _| || |
\__ \ ' < | || |__| |__\__ \ |__| _|| |_| | | | | __ |
|___/_|\_\___|____|____|___/____|___|\___/  |_| |_||_|
 skills and salaries from live job listings
`

// Salary bands for annual GBP figures
const (
	highSalary   = 50000
	goodSalary   = 35000
	middleSalary = 25000
)

// ColorizeText fades the text between two random colors
func ColorizeText(text string) string {
	random := rand.New(rand.NewSource(time.Now().UnixNano()))

	startColor := pterm.NewRGB(uint8(random.Intn(256)), uint8(random.Intn(256)), uint8(random.Intn(256)))
	endColor := pterm.NewRGB(uint8(random.Intn(256)), uint8(random.Intn(256)), uint8(random.Intn(256)))

	chars := strings.Split(text, "")
	total := float32(len(chars))

	var b strings.Builder
	for i, c := range chars {
		b.WriteString(startColor.Fade(0, total, float32(i), endColor).Sprint(c))
	}
	return b.String()
}

// PrintBanner displays the application banner
func PrintBanner(silence bool) {
	if !silence {
		fmt.Println(ColorizeText(bannerText))
	}
}

// ColorizeSalary formats a salary and colors it by band
func ColorizeSalary(salary mo.Option[float64]) string {
	value, ok := salary.Get()
	if !ok {
		return pterm.Red("Not Available")
	}

	formatted := utils.FormatSalary(value, utils.DefaultCurrency)

	switch {
	case value >= highSalary:
		return pterm.Green(formatted)
	case value >= goodSalary:
		return pterm.LightGreen(formatted)
	case value >= middleSalary:
		return pterm.Yellow(formatted)
	default:
		return pterm.Red(formatted)
	}
}
