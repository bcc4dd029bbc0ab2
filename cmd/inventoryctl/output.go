package main

import "github.com/fatih/color"

func ok(s string) string {
	return color.New(color.FgGreen).Sprint(s)
}

func failed(s string) string {
	return color.New(color.FgRed).Sprint(s)
}

func dim(s string) string {
	return color.New(color.FgYellow).Sprint(s)
}
