package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/blockchain-toolbox/eth-rpc-check/internal/client"
)

// Selection is what the interactive prompt collects.
type Selection struct {
	MethodSet   string
	Methods     []string
	Endpoints   []string
	Repetitions int
	Concurrent  bool
}

var bannerLines = []string{
	"██████╗ ██████╗  ██████╗",
	"██╔══██╗██╔══██╗██╔════╝",
	"██████╔╝██████╔╝██║     ",
	"██╔══██╗██╔═══╝ ██║     ",
	"██║  ██║██║     ╚██████╗",
	"╚═╝  ╚═╝╚═╝      ╚═════╝",
}

var gradientStops = [][3]float64{
	{79, 70, 229},   // indigo #4F46E5
	{129, 92, 246},  // violet #8B5CF6
	{168, 85, 247},  // purple #A855F7
	{217, 70, 239},  // fuchsia #D946EF
	{236, 72, 153},  // pink #EC4899
	{251, 113, 133}, // rose #FB7185
}

func lerpColor(c1, c2 [3]float64, t float64) [3]float64 {
	return [3]float64{
		c1[0] + (c2[0]-c1[0])*t,
		c1[1] + (c2[1]-c1[1])*t,
		c1[2] + (c2[2]-c1[2])*t,
	}
}

func gradientColor(t float64) [3]float64 {
	if t <= 0 {
		return gradientStops[0]
	}
	if t >= 1 {
		return gradientStops[len(gradientStops)-1]
	}

	segments := float64(len(gradientStops) - 1)
	scaled := t * segments
	idx := min(int(scaled), len(gradientStops)-2)
	return lerpColor(gradientStops[idx], gradientStops[idx+1], scaled-float64(idx))
}

func PrintBanner() {
	Blank()

	height := len(bannerLines)
	width := 0
	for _, line := range bannerLines {
		width = max(width, len([]rune(line)))
	}

	for y, line := range bannerLines {
		var b strings.Builder
		for x, r := range []rune(line) {
			diagonal := (float64(x)/float64(width))*0.5 + (float64(y)/float64(height))*0.5
			c := gradientColor(diagonal)
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(
				fmt.Sprintf("#%02X%02X%02X", int(c[0]), int(c[1]), int(c[2])),
			))
			b.WriteString(style.Render(string(r)))
		}
		Println(b.String())
	}
	Blank()
}

// PromptSelection asks which endpoints and methods to test.
func PromptSelection(endpoints []client.Endpoint, methodNames []string, defaultRepetitions int) (*Selection, error) {
	var (
		methodSet   = "all"
		custom      []string
		selected    []string
		repetitions = strconv.Itoa(defaultRepetitions)
		concurrent  bool
	)

	endpointOptions := make([]huh.Option[string], len(endpoints))
	for i, ep := range endpoints {
		label := fmt.Sprintf("%s  %s", ep.Name, ep.Address)
		endpointOptions[i] = huh.NewOption(label, ep.Name).Selected(true)
	}
	methodOptions := make([]huh.Option[string], len(methodNames))
	for i, name := range methodNames {
		methodOptions[i] = huh.NewOption(name, name)
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Select endpoints").
				Options(endpointOptions...).
				Value(&selected),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Select method set").
				Options(
					huh.NewOption("All methods", "all"),
					huh.NewOption("Basic (quick health probe)", "basic"),
					huh.NewOption("Extended (basic + state queries)", "extended"),
					huh.NewOption("Pick methods", "custom"),
				).Value(&methodSet),
		),
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Select methods").
				Options(methodOptions...).
				Value(&custom),
		).WithHideFunc(func() bool { return methodSet != "custom" }),
		huh.NewGroup(
			huh.NewInput().
				Title("Calls per method").
				Description("1 to 100").
				Value(&repetitions).
				Validate(validateRepetitions),
			huh.NewConfirm().
				Title("Run methods concurrently?").
				Value(&concurrent),
		),
	).WithTheme(huh.ThemeCatppuccin()).WithKeyMap(huh.NewDefaultKeyMap())

	if err := form.Run(); err != nil {
		return nil, err
	}

	if len(selected) == 0 {
		return nil, errors.New("no endpoints selected - please select at least one endpoint")
	}
	if methodSet == "custom" && len(custom) == 0 {
		return nil, errors.New("no methods selected - please select at least one method")
	}

	reps, _ := strconv.Atoi(strings.TrimSpace(repetitions))
	return &Selection{
		MethodSet:   methodSet,
		Methods:     custom,
		Endpoints:   selected,
		Repetitions: reps,
		Concurrent:  concurrent,
	}, nil
}

func validateRepetitions(value string) error {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return errors.New("enter a whole number")
	}
	if n < 1 || n > 100 {
		return errors.New("must be between 1 and 100")
	}
	return nil
}

// Plan describes a run before it starts.
type Plan struct {
	Endpoints   []client.Endpoint
	MethodCount int
	Repetitions int
	Mode        string
	Exhaustive  bool
	StrictIDs   bool
	Output      string
	Influx      bool
}

func PrintPlan(plan Plan) {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	enabledStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	disabledStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	formatStatus := func(enabled bool) string {
		if enabled {
			return enabledStyle.Render("enabled")
		}
		return disabledStyle.Render("disabled")
	}
	line := func(label, value string) {
		printf("%s %s\n", labelStyle.Render(fmt.Sprintf("%-14s", label+":")), value)
	}

	Println(headerStyle.Render("Configuration"))
	Println(strings.Repeat("─", 40))

	for _, ep := range plan.Endpoints {
		line(ep.Name, valueStyle.Render(ep.Address))
	}
	line("Methods", valueStyle.Render(strconv.Itoa(plan.MethodCount)))
	line("Calls/method", valueStyle.Render(strconv.Itoa(plan.Repetitions)))
	line("Mode", valueStyle.Render(plan.Mode))
	line("Probe abort", formatStatus(!plan.Exhaustive))
	line("Strict ids", formatStatus(plan.StrictIDs))
	line("InfluxDB", formatStatus(plan.Influx))
	line("Output", valueStyle.Render(plan.Output))

	Println(strings.Repeat("─", 40))
	Blank()
}
