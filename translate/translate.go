// Package translate formats user visible messages for the current locale.
package translate

//go:generate go tool gotext -srclang=en-US update -out=catalog.go -lang=en-US github.com/asurkis/risc-emulator/cmd/rvemu

import (
	"sync"

	"github.com/jeandeaual/go-locale"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	lock    sync.RWMutex
	printer *message.Printer
)

func init() {
	locales, err := locale.GetLocales()
	if err != nil {
		logrus.WithError(err).Debug("translate: locale lookup failed")
	}

	SetLanguage(locales...)
}

// SetLanguage selects the printer for the best match of the given
// BCP 47 tags. With no tags, en-US is used.
func SetLanguage(tags ...string) {
	if len(tags) == 0 {
		tags = []string{language.AmericanEnglish.String()}
	}

	lock.Lock()
	defer lock.Unlock()
	printer = message.NewPrinter(message.MatchLanguage(tags...))
}

// From an en-US Sprintf() format, translate to string.
func From(key message.Reference, args ...any) string {
	lock.RLock()
	defer lock.RUnlock()
	return printer.Sprintf(key, args...)
}
