package progress

import (
	"context"
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"

	"github.com/1F47E/go-framereel/pkg/tui"
)

// bar resolution, events carry a fraction
const steps = 1000

var Progress = progressCreate(-1, "") // init as spinner

func ProgressSpinner(desc string) {
	_ = Progress.Clear()
	ProgressReset(-1, desc)
	_ = Progress.RenderBlank()
}

func ProgressReset(max int, desc string) {
	Progress = progressCreate(max, desc)
}

func Set(n int) {
	_ = Progress.Set(n)
}

func Describe(desc string) {
	Progress.Describe(desc)
}

func Finish() {
	_ = Progress.Finish()
}

// Run renders core events on stderr until the channel closes or ctx ends.
func Run(ctx context.Context, events <-chan tui.Event) {
	current := tui.EventTypeText
	for {
		select {
		case <-ctx.Done():
			Finish()
			return
		case e, ok := <-events:
			if !ok {
				Finish()
				return
			}
			switch e.Type() {
			case tui.EventTypeSpin:
				ProgressSpinner(e.Text())
			case tui.EventTypeBar:
				if current != tui.EventTypeBar {
					_ = Progress.Clear()
					ProgressReset(steps, e.Text())
				}
				Describe(e.Text())
				Set(int(e.Percent() * steps))
			case tui.EventTypeText:
				_ = Progress.Clear()
				fmt.Fprintln(os.Stderr, e.Text())
			}
			current = e.Type()
		}
	}
}

func progressCreate(max int, desc string) *progressbar.ProgressBar {
	return progressbar.NewOptions(max,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(desc),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]/[reset]",
			SaucerHead:    "[green]/[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}
