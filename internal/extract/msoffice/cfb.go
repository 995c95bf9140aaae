package msoffice

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf16"

	"github.com/richardlehane/mscfb"

	"github.com/rinomina/facile/internal/core/domain"
)

// ReducedFidelityNotice labels legacy-format output recovered without a
// full binary parser.
const ReducedFidelityNotice = "[reduced-fidelity extraction from legacy format]"

// cfbStream is one named stream pulled out of a compound-file container.
type cfbStream struct {
	name string
	data []byte
}

// readCFBStreams opens a legacy Office compound file and returns its
// streams. A stream larger than maxStreamBytes is truncated, not skipped.
func readCFBStreams(path string) ([]cfbStream, error) {
	const maxStreamBytes = 4 << 20

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.WrapError(domain.ErrNotFound, "open legacy document", err)
		}
		return nil, domain.WrapError(domain.ErrDecodeFailure, "open legacy document", err)
	}
	defer f.Close()

	container, err := mscfb.New(f)
	if err != nil {
		return nil, domain.WrapError(domain.ErrDecodeFailure, "parse compound file", err)
	}

	var streams []cfbStream
	for entry, err := container.Next(); err == nil; entry, err = container.Next() {
		size := entry.Size
		if size <= 0 {
			streams = append(streams, cfbStream{name: entry.Name})
			continue
		}
		if size > maxStreamBytes {
			size = maxStreamBytes
		}
		data := make([]byte, size)
		n, _ := io.ReadFull(entry, data)
		streams = append(streams, cfbStream{name: entry.Name, data: data[:n]})
	}
	if len(streams) == 0 {
		return nil, domain.WrapError(domain.ErrDecodeFailure, "parse compound file", fmt.Errorf("no streams found"))
	}
	return streams, nil
}

func findStream(streams []cfbStream, name string) ([]byte, bool) {
	for _, s := range streams {
		if s.name == name {
			return s.data, true
		}
	}
	return nil, false
}

// streamListing is the structural-only fallback when no text could be
// recovered from a legacy container.
func streamListing(streams []cfbStream) string {
	var b strings.Builder
	b.WriteString(ReducedFidelityNotice)
	b.WriteString("\nNo text could be extracted; document streams:\n")
	for _, s := range streams {
		fmt.Fprintf(&b, "  %s (%s)\n", s.name, domain.FormatFileSize(int64(len(s.data))))
	}
	return strings.TrimRight(b.String(), "\n")
}

// printableRuns recovers readable text from a binary stream: runs of
// printable ASCII and of ASCII-range UTF-16LE, minimum run length 4.
func printableRuns(data []byte, maxRuns int) []string {
	const minRun = 4
	var runs []string

	flush := func(b *strings.Builder) {
		if b.Len() >= minRun {
			runs = append(runs, b.String())
		}
		b.Reset()
	}

	var ascii strings.Builder
	for _, c := range data {
		if len(runs) >= maxRuns {
			return runs
		}
		if c >= 0x20 && c < 0x7F {
			ascii.WriteByte(c)
		} else {
			flush(&ascii)
		}
	}
	flush(&ascii)

	var wide strings.Builder
	for i := 0; i+1 < len(data); i += 2 {
		if len(runs) >= maxRuns {
			return runs
		}
		if data[i+1] == 0 && data[i] >= 0x20 && data[i] < 0x7F {
			wide.WriteByte(data[i])
		} else {
			flush(&wide)
		}
	}
	flush(&wide)

	return runs
}

// legacyWordText recovers .doc text through a strings scan of the
// WordDocument stream, falling back to a structural listing.
func legacyWordText(path string, maxParagraphs int) (string, error) {
	streams, err := readCFBStreams(path)
	if err != nil {
		return "", err
	}

	if data, ok := findStream(streams, "WordDocument"); ok {
		if runs := printableRuns(data, maxParagraphs); len(runs) > 0 {
			return ReducedFidelityNotice + "\n" + strings.Join(runs, "\n"), nil
		}
	}
	return streamListing(streams), nil
}

func decodeUTF16LE(data []byte) string {
	units := make([]uint16, 0, len(data)/2)
	for i := 0; i+1 < len(data); i += 2 {
		units = append(units, uint16(data[i])|uint16(data[i+1])<<8)
	}
	return string(utf16.Decode(units))
}
