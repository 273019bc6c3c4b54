package contentstream

// GSInvocation records one application of the "gs" operator together with the
// fill color in effect at that point in the stream. FillOperator is empty when
// no fill color was set before the invocation.
type GSInvocation struct {
	Name           string
	FillOperator   string
	FillComponents []float64
}

// color operators tracked for graphics-state classification. Uppercase K is
// included: a black stroke set up for overprint is classified the same way as
// its fill variant.
func isFillColorOperator(op string) bool {
	switch op {
	case "k", "K", "g", "rg", "sc", "scn":
		return true
	default:
		return false
	}
}

// ScanExtGStateUse walks a token stream and reports every "gs" invocation
// with the most recent fill color preceding it. The caller resolves the
// named graphics state against the page's ExtGState resources.
func ScanExtGStateUse(tokens []Token) []GSInvocation {
	var (
		invocations []GSInvocation
		operands    []Token
		fillOp      string
		fillComps   []float64
	)

	for _, token := range tokens {
		if token.Kind != KindOperator {
			operands = append(operands, token)

			continue
		}

		switch {
		case isFillColorOperator(token.Raw):
			fillOp = token.Raw
			fillComps = numericOperands(operands)
		case token.Raw == "gs":
			name := lastName(operands)
			if name != "" {
				invocations = append(invocations, GSInvocation{
					Name:           name,
					FillOperator:   fillOp,
					FillComponents: fillComps,
				})
			}
		}

		operands = operands[:0]
	}

	return invocations
}

// FontSize is one "Tf" text-font selection.
type FontSize struct {
	Name   string
	SizePt float64
}

// ScanFontSizes reports every Tf operator's font resource name and size in
// points. Sizes of zero are kept; the caller decides how to treat them
// (a zero Tf size is legal when the text matrix supplies the scale).
func ScanFontSizes(tokens []Token) []FontSize {
	var (
		sizes    []FontSize
		operands []Token
	)

	for _, token := range tokens {
		if token.Kind != KindOperator {
			operands = append(operands, token)

			continue
		}

		if token.Raw == "Tf" {
			name := lastName(operands)

			nums := numericOperands(operands)
			if name != "" && len(nums) > 0 {
				sizes = append(sizes, FontSize{Name: name, SizePt: nums[len(nums)-1]})
			}
		}

		operands = operands[:0]
	}

	return sizes
}

// TransparencyMarkers reports the distinct transparency-related names found
// in a stream: "SMask" and any blend mode other than Normal or Compatible.
// ExtGState alpha constants do not appear in content streams and are checked
// through the resource dictionaries instead.
func TransparencyMarkers(tokens []Token) []string {
	seen := make(map[string]bool)

	var markers []string

	record := func(name string) {
		if !seen[name] {
			seen[name] = true

			markers = append(markers, name)
		}
	}

	for i, token := range tokens {
		if token.Kind != KindName {
			continue
		}

		switch token.Raw {
		case "SMask":
			// /SMask /None explicitly disables soft masking.
			if i+1 < len(tokens) && tokens[i+1].Kind == KindName && tokens[i+1].Raw == "None" {
				continue
			}

			record("SMask")
		case "BM":
			if i+1 < len(tokens) && tokens[i+1].Kind == KindName {
				mode := tokens[i+1].Raw
				if mode != "Normal" && mode != "Compatible" {
					record("BM/" + mode)
				}
			}
		}
	}

	return markers
}

func numericOperands(operands []Token) []float64 {
	var nums []float64

	for _, operand := range operands {
		if operand.Kind == KindNumber {
			nums = append(nums, operand.Num)
		}
	}

	return nums
}

func lastName(operands []Token) string {
	for i := len(operands) - 1; i >= 0; i-- {
		if operands[i].Kind == KindName {
			return operands[i].Raw
		}
	}

	return ""
}
