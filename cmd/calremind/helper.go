package main

import (
	"strings"

	"github.com/guilherme-santos/calremind"
)

type stringsFlag []string

func (f *stringsFlag) String() string {
	return strings.Join(*f, ", ")
}

func (f *stringsFlag) Set(value string) error {
	*f = append(*f, value)
	return nil
}

func calremindCalendar(id string) calremind.Calendar {
	return calremind.Calendar{ID: id, Platform: googleProvider}
}
