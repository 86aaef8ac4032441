package output

import (
	"fmt"
	"math"

	"github.com/fatih/color"

	"github.com/swadbest/shopctl/internal/shipment"
)

// StatusBadge renders a shipment status as a short colored label
func (p *Printer) StatusBadge(s shipment.Status) string {
	label := s.Label()
	if !p.useColors {
		return fmt.Sprintf("[%s]", label)
	}

	switch {
	case s.IsTerminal():
		return color.RedString("● " + label)
	case s == shipment.StatusDelivered:
		return color.GreenString("● " + label)
	case s == shipment.StatusPlaced:
		return color.WhiteString("○ " + label)
	default:
		return color.YellowString("● " + label)
	}
}

// Timeline prints the progress of a shipment. Cancelled and returned shipments
// are shown as a single card with no progress.
func (p *Printer) Timeline(tl shipment.Timeline) {
	if p.quiet {
		return
	}

	if tl.Terminal {
		msg := "This order was cancelled."
		if tl.Current == shipment.StatusRTO {
			msg = "This shipment was returned to the seller."
		}
		fmt.Fprintf(p.out, "%s\n  %s\n", p.StatusBadge(tl.Current), msg)
		return
	}

	for _, stage := range tl.Stages {
		mark := p.stageMark(stage.State)
		label := stage.Status.Label()
		switch stage.State {
		case shipment.StageCurrent:
			label = p.Bold(label)
		case shipment.StagePending:
			label = p.Dim(label)
		}
		fmt.Fprintf(p.out, "  %s %s\n", mark, label)
	}
	fmt.Fprintf(p.out, "  %d%% complete\n", int(math.Round(tl.Progress()*100)))
}

var plainMarks = map[shipment.StageState]string{
	shipment.StageCompleted: "[x]",
	shipment.StageCurrent:   "[>]",
	shipment.StagePending:   "[ ]",
}

func (p *Printer) stageMark(state shipment.StageState) string {
	if !p.useColors {
		return plainMarks[state]
	}
	switch state {
	case shipment.StageCompleted:
		return color.GreenString("✓")
	case shipment.StageCurrent:
		return color.New(color.FgYellow, color.Bold).Sprint("▶")
	default:
		return p.Dim("○")
	}
}
