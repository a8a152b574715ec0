package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"novaclient/internal/game"
)

var errCancelled = errors.New("cancelled")

// promptResolver asks on the terminal when the launch flags leave the race
// open. An empty answer cancels.
type promptResolver struct {
	in  *bufio.Reader
	out io.Writer
	ext game.Extensions
}

func newPromptResolver(in io.Reader, out io.Writer, ext game.Extensions) *promptResolver {
	return &promptResolver{in: bufio.NewReader(in), out: out, ext: ext.Normalize()}
}

func (p *promptResolver) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", errCancelled
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", errCancelled
	}
	return line, nil
}

func (p *promptResolver) SelectRace(gameFolder string, races []string) (string, error) {
	fmt.Fprintf(p.out, "Races in %s:\n", gameFolder)
	for i, r := range races {
		fmt.Fprintf(p.out, "  %d) %s\n", i+1, r)
	}
	fmt.Fprint(p.out, "Play as (number or name): ")
	line, err := p.readLine()
	if err != nil {
		return "", err
	}
	if n, err := strconv.Atoi(line); err == nil {
		if n < 1 || n > len(races) {
			return "", fmt.Errorf("no race number %d", n)
		}
		return races[n-1], nil
	}
	for _, r := range races {
		if strings.EqualFold(r, line) {
			return r, nil
		}
	}
	return "", fmt.Errorf("no race named %q", line)
}

func (p *promptResolver) ChooseIntelFile(gameFolder string) (string, error) {
	fmt.Fprintf(p.out, "Turn file (*.%s): ", p.ext.Intel)
	line, err := p.readLine()
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(line) {
		if _, err := os.Stat(line); err != nil {
			line = filepath.Join(gameFolder, line)
		}
	}
	return line, nil
}
