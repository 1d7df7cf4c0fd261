package analysis

import (
	"bytes"
	"crypto/sha256"
	"sync"

	"github.com/linetally/linetally/internal/encoding"
	"github.com/linetally/linetally/internal/lexing"
	"github.com/linetally/linetally/internal/types"
)

const (
	// binarySniffLength is the number of leading bytes scanned for zero bytes.
	binarySniffLength = 8192
	// languageSampleLength is the number of leading bytes offered to the
	// lexer for content-based language identification.
	languageSampleLength = 4096
)

// GeneratedPredicate decides whether a file counts as generated. It receives
// the file path and the leading content bytes; pattern compilation and
// dialect selection happen in the configuration layer, never here.
type GeneratedPredicate func(path string, contentHead []byte) bool

// contentSignature identifies file content by size and cryptographic hash.
type contentSignature struct {
	size   int64
	digest [sha256.Size]byte
}

// DuplicateRegistry records the first path seen for every content signature
// of one analysis run. It is the only shared mutable state of the pipeline;
// check-and-insert is a single atomic operation so that two bytewise
// identical files processed concurrently cannot both win as the original.
type DuplicateRegistry struct {
	mutex         sync.Mutex
	firstSeenPath map[contentSignature]string
}

// NewDuplicateRegistry creates an empty registry scoped to one run.
func NewDuplicateRegistry() *DuplicateRegistry {
	return &DuplicateRegistry{firstSeenPath: make(map[contentSignature]string)}
}

// Register looks up the signature of content and inserts path as its
// original if the signature is new. It returns the original path and true
// when the content was already registered under a different path.
func (registry *DuplicateRegistry) Register(content []byte, path string) (string, bool) {
	signature := contentSignature{
		size:   int64(len(content)),
		digest: sha256.Sum256(content),
	}
	registry.mutex.Lock()
	defer registry.mutex.Unlock()
	if originalPath, exists := registry.firstSeenPath[signature]; exists {
		return originalPath, true
	}
	registry.firstSeenPath[signature] = path
	return "", false
}

// Verdict is the gatekeeper's decision for one file. State is
// types.StateAnalyzed when the file should proceed to lexing and
// classification; every other state is terminal.
type Verdict struct {
	State    string
	Language string
	Detail   string
}

// Gatekeeper inspects raw file content and decides, before any lexing,
// whether a file is analyzable.
type Gatekeeper struct {
	registry    *DuplicateRegistry
	isGenerated GeneratedPredicate
}

// NewGatekeeper creates a gatekeeper. A nil registry disables duplicate
// detection; a nil predicate disables generated detection.
func NewGatekeeper(registry *DuplicateRegistry, isGenerated GeneratedPredicate) *Gatekeeper {
	return &Gatekeeper{registry: registry, isGenerated: isGenerated}
}

// Inspect applies the verdict checks in fixed precedence order: empty,
// binary, generated, duplicate, unknown, proceed. The first match wins.
func (gatekeeper *Gatekeeper) Inspect(path string, content []byte) Verdict {
	if len(content) == 0 {
		return Verdict{State: types.StateEmpty}
	}
	if isBinaryContent(content) {
		return Verdict{State: types.StateBinary}
	}
	if gatekeeper.isGenerated != nil && gatekeeper.isGenerated(path, headOf(content, binarySniffLength)) {
		return Verdict{State: types.StateGenerated}
	}
	if gatekeeper.registry != nil {
		if originalPath, isDuplicate := gatekeeper.registry.Register(content, path); isDuplicate {
			return Verdict{State: types.StateDuplicate, Detail: originalPath}
		}
	}
	languageName, found := lexing.IdentifyLanguage(path, string(headOf(content, languageSampleLength)))
	if !found {
		return Verdict{State: types.StateUnknown}
	}
	return Verdict{State: types.StateAnalyzed, Language: languageName}
}

// isBinaryContent reports whether content looks binary: no known byte-order
// mark and at least one zero byte within the sniff window. A BOM prefix is
// sufficient to treat content as text regardless of later zero bytes.
func isBinaryContent(content []byte) bool {
	if _, hasBOM := encoding.DetectBOM(content); hasBOM {
		return false
	}
	return bytes.IndexByte(headOf(content, binarySniffLength), 0) != -1
}

// headOf returns at most limit leading bytes of content.
func headOf(content []byte, limit int) []byte {
	if len(content) > limit {
		return content[:limit]
	}
	return content
}

// rawLineCount counts physical lines in raw bytes: one per newline plus one
// for a non-empty trailing fragment.
func rawLineCount(content []byte) int {
	if len(content) == 0 {
		return 0
	}
	lineCount := bytes.Count(content, []byte{'\n'})
	if content[len(content)-1] != '\n' {
		lineCount++
	}
	return lineCount
}
