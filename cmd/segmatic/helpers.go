package main

import "time"

const summaryRounding = 10 * time.Millisecond

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
