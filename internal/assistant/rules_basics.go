package assistant

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var timePattern = regexp.MustCompile(`\btime\b`)

// timeRule answers "what time is it" with a 12-hour clock reading. The word
// boundary keeps "15 times 23" out of here.
func timeRule(clock Clock) Rule {
	return Rule{
		Name:     "time",
		Examples: []string{"what time is it"},
		Match: func(c string) bool {
			return timePattern.MatchString(c)
		},
		Handle: func(ctx context.Context, c string) Response {
			now := clock()
			return Response{
				Spoken:            "The current time is " + now.Format("3:04 PM") + ".",
				AdditionalContext: now.Format("Monday, January 2, 2006"),
			}
		},
	}
}

const number = `(\d+(?:\.\d+)?)`

var (
	tipPatterns = []*regexp.Regexp{
		regexp.MustCompile(number + `\s*%\s*tip.*?(?:on\s+)?\$?` + number),
		regexp.MustCompile(`(?:what'?s\s+)?(?:a\s+)?` + number + `\s*percent\s+tip.*?\$?` + number),
	}
	percentPatterns = []*regexp.Regexp{
		regexp.MustCompile(number + `\s*%\s+of\s+` + number),
		regexp.MustCompile(number + `\s*percent\s+of\s+` + number),
	}
	arithmeticPatterns = []struct {
		re   *regexp.Regexp
		verb string
		calc func(a, b float64) float64
	}{
		{regexp.MustCompile(number + `\s*\+\s*` + number), "plus", func(a, b float64) float64 { return a + b }},
		{regexp.MustCompile(number + `\s*-\s*` + number), "minus", func(a, b float64) float64 { return a - b }},
		{regexp.MustCompile(number + `\s*\*\s*` + number), "times", func(a, b float64) float64 { return a * b }},
		{regexp.MustCompile(number + `\s*/\s*` + number), "divided by", func(a, b float64) float64 { return a / b }},
		{regexp.MustCompile(number + `\s+plus\s+` + number), "plus", func(a, b float64) float64 { return a + b }},
		{regexp.MustCompile(number + `\s+minus\s+` + number), "minus", func(a, b float64) float64 { return a - b }},
		{regexp.MustCompile(number + `\s+times\s+` + number), "times", func(a, b float64) float64 { return a * b }},
		{regexp.MustCompile(number + `\s+divided\s+by\s+` + number), "divided by", func(a, b float64) float64 { return a / b }},
	}
	celsiusToF = regexp.MustCompile(number + `\s*(?:degrees?\s+)?(?:celsius|c)\s+to\s+(?:fahrenheit|f)\b`)
	fToCelsius = regexp.MustCompile(number + `\s*(?:degrees?\s+)?(?:fahrenheit|f)\s+to\s+(?:celsius|c)\b`)
)

// calculationRule handles the quick math nobody should need an LLM for:
// tips, percentages, basic arithmetic, temperature conversions.
func calculationRule() Rule {
	return Rule{
		Name:     "calculation",
		Examples: []string{"what's a 20 percent tip on 45", "what's 15 times 23", "30 celsius to fahrenheit"},
		Match: func(c string) bool {
			_, ok := calculate(c)
			return ok
		},
		Handle: func(ctx context.Context, c string) Response {
			if resp, ok := calculate(c); ok {
				return resp
			}
			// Matched but extraction failed; answer safely rather than guess.
			return spoken("I recognized a calculation but couldn't work out the numbers.")
		},
	}
}

func calculate(c string) (Response, bool) {
	if resp, ok := calcTip(c); ok {
		return resp, true
	}
	if resp, ok := calcPercent(c); ok {
		return resp, true
	}
	if resp, ok := calcArithmetic(c); ok {
		return resp, true
	}
	if resp, ok := calcConversion(c); ok {
		return resp, true
	}
	return Response{}, false
}

func calcTip(c string) (Response, bool) {
	for _, re := range tipPatterns {
		m := re.FindStringSubmatch(c)
		if m == nil {
			continue
		}
		percentage, amount := parseNum(m[1]), parseNum(m[2])
		tip := amount * percentage / 100
		total := amount + tip
		return spoken(fmt.Sprintf("A %s%% tip on $%.2f is $%.2f. Total would be $%.2f.",
			trimFloat(percentage), amount, tip, total)), true
	}
	return Response{}, false
}

func calcPercent(c string) (Response, bool) {
	for _, re := range percentPatterns {
		m := re.FindStringSubmatch(c)
		if m == nil {
			continue
		}
		percentage, amount := parseNum(m[1]), parseNum(m[2])
		result := amount * percentage / 100
		return spoken(fmt.Sprintf("%s%% of %s is %s.",
			trimFloat(percentage), trimFloat(amount), trimFloat(result))), true
	}
	return Response{}, false
}

func calcArithmetic(c string) (Response, bool) {
	for _, p := range arithmeticPatterns {
		m := p.re.FindStringSubmatch(c)
		if m == nil {
			continue
		}
		a, b := parseNum(m[1]), parseNum(m[2])
		if p.verb == "divided by" && b == 0 {
			return spoken("You can't divide by zero."), true
		}
		result := p.calc(a, b)
		return spoken(fmt.Sprintf("%s %s %s equals %s.",
			trimFloat(a), p.verb, trimFloat(b), trimFloat(result))), true
	}
	return Response{}, false
}

func calcConversion(c string) (Response, bool) {
	if m := celsiusToF.FindStringSubmatch(c); m != nil {
		celsius := parseNum(m[1])
		fahrenheit := celsius*9/5 + 32
		return spoken(fmt.Sprintf("%s degrees Celsius is %.1f degrees Fahrenheit.",
			trimFloat(celsius), fahrenheit)), true
	}
	if m := fToCelsius.FindStringSubmatch(c); m != nil {
		fahrenheit := parseNum(m[1])
		celsius := (fahrenheit - 32) * 5 / 9
		return spoken(fmt.Sprintf("%s degrees Fahrenheit is %.1f degrees Celsius.",
			trimFloat(fahrenheit), celsius)), true
	}
	return Response{}, false
}

func parseNum(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

// trimFloat renders numbers the way you would say them: "345", not "345.00".
func trimFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}
