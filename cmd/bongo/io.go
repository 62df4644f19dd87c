package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"unicode"

	"golang.org/x/term"

	"github.com/it-a-me/bongo"
)

const ctrlC = 3

// shortcuts assigns each option the first letter not yet taken by an earlier option, matched case-insensitively.
// The returned labels highlight that letter, with escape sequences or in brackets.
func shortcuts(options []string, escapes bool) (byLetter map[rune]string, labels []string) {
	byLetter = make(map[rune]string)
	for _, option := range options {
		for i, letter := range option {
			lower, upper := unicode.ToLower(letter), unicode.ToUpper(letter)
			if _, taken := byLetter[lower]; taken {
				continue
			}
			if _, taken := byLetter[upper]; taken {
				continue
			}
			byLetter[lower] = option
			byLetter[upper] = option
			marked := fmt.Sprintf("[%c]", letter)
			if escapes {
				marked = fmt.Sprintf("\x1B[1m\x1B[4m%c\x1B[0m", letter)
			}
			labels = append(labels, option[:i]+marked+option[i+len(string(letter)):])
			break
		}
	}
	return
}

// readKey reads one key press and delivers it on keys, or on interrupt for Ctrl+C in raw mode.
// Without raw mode the key must be confirmed with ENTER; anything longer is delivered as '?'.
// Both channels must be buffered so that an abandoned read never blocks forever.
func readKey(in io.Reader, raw bool, keys chan<- rune, interrupt chan<- os.Signal) {
	reader := bufio.NewReaderSize(in, 16)
	input, err := reader.ReadByte()
	if err != nil {
		select {
		case interrupt <- os.Interrupt:
		default:
		}
		return
	}
	if !raw && reader.Buffered() > 0 {
		if extra, _ := reader.ReadByte(); extra != '\n' && extra != '\r' {
			keys <- '?'
			return
		}
	}
	if raw && input == ctrlC {
		select {
		case interrupt <- os.Interrupt:
		default:
		}
		return
	}
	keys <- rune(input)
}

// PromptUser asks on the terminal, accepting a single key per option. An interrupt aborts with an empty choice.
func PromptUser(allowEscapeSequences bool) bongo.RequestChoice {
	return func(request string, options []string, cleanup bool) string {
		byLetter, labels := shortcuts(options, allowEscapeSequences)

		keys := make(chan rune, 1)
		interrupt := make(chan os.Signal, 1)
		signal.Notify(interrupt, os.Interrupt)
		defer signal.Reset(os.Interrupt)

		raw := false
		if allowEscapeSequences {
			if previous, err := term.MakeRaw(int(os.Stdin.Fd())); err == nil {
				raw = true
				defer term.Restore(int(os.Stdin.Fd()), previous)
			}
		}
		rawOut := func(text string) {
			if raw {
				fmt.Fprint(os.Stdout, text)
			}
		}

		prompt := fmt.Sprintf("%s (%s): ", request, strings.Join(labels, " / "))
		fmt.Fprint(os.Stdout, prompt)
		for {
			go readKey(os.Stdin, raw, keys, interrupt)
			select {
			case pressed := <-keys:
				if choice, found := byLetter[pressed]; found {
					rawOut(fmt.Sprintf("%c", unicode.ToUpper(pressed)))
					if cleanup {
						rawOut("\033[2K\r")
					} else {
						rawOut("\r\n")
					}
					return choice
				}
				rawOut("\a")
				if !raw {
					fmt.Fprint(os.Stdout, prompt)
				}
			case <-interrupt:
				fmt.Fprint(os.Stdout, "<CANCELLED>\r\n")
				return ""
			}
		}
	}
}
