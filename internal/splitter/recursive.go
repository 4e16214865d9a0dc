package splitter

import "strings"

// DefaultSeparators are tried in order: paragraphs, lines, sentence
// punctuation, words, then single characters.
var DefaultSeparators = []string{"\n\n", "\n", ".", "!", "?", " ", ""}

// Recursive splits on the coarsest separator present in the text, recursing
// into pieces that are still too long, then merges neighbouring pieces into
// chunks of at most Size runes sharing up to Overlap runes.
type Recursive struct {
	Size       int
	Overlap    int
	Separators []string
}

func (r Recursive) Split(text string) ([]string, error) {
	if err := checkSizes(r.Size, r.Overlap); err != nil {
		return nil, err
	}
	seps := r.Separators
	if len(seps) == 0 {
		seps = DefaultSeparators
	}
	return r.split(text, seps), nil
}

func (r Recursive) split(text string, seps []string) []string {
	sep := seps[len(seps)-1]
	var rest []string
	for i, s := range seps {
		if s == "" {
			sep = ""
			break
		}
		if strings.Contains(text, s) {
			sep = s
			rest = seps[i+1:]
			break
		}
	}

	var out, small []string
	for _, piece := range strings.Split(text, sep) {
		if piece == "" {
			continue
		}
		if runeLen(piece) < r.Size {
			small = append(small, piece)
			continue
		}
		if len(small) > 0 {
			out = append(out, r.merge(small, sep)...)
			small = nil
		}
		if len(rest) == 0 {
			out = append(out, piece)
		} else {
			out = append(out, r.split(piece, rest)...)
		}
	}
	if len(small) > 0 {
		out = append(out, r.merge(small, sep)...)
	}
	return out
}

func (r Recursive) merge(pieces []string, sep string) []string {
	sepLen := runeLen(sep)
	var out, window []string
	total := 0
	joinCost := func() int {
		if len(window) > 0 {
			return sepLen
		}
		return 0
	}
	emit := func() {
		if doc := strings.TrimSpace(strings.Join(window, sep)); doc != "" {
			out = append(out, doc)
		}
	}

	for _, p := range pieces {
		n := runeLen(p)
		if total+n+joinCost() > r.Size && len(window) > 0 {
			emit()
			for total > r.Overlap || (total > 0 && total+n+joinCost() > r.Size) {
				drop := runeLen(window[0])
				if len(window) > 1 {
					drop += sepLen
				}
				total -= drop
				window = window[1:]
			}
		}
		total += n + joinCost()
		window = append(window, p)
	}
	emit()
	return out
}

func runeLen(s string) int { return len([]rune(s)) }
