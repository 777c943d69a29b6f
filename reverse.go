package reverser

import "bytes"

const separator = ' '

// Transform reverses the order of the space-delimited words in p, in place. Each word keeps its own byte order and
// every separator keeps its position relative to its neighbours. Only ASCII space separates words.
//
func Transform(p []byte) {
	if len(p) < 1 {
		return
	}
	wordStart := 0
	for {
		i := bytes.IndexByte(p[wordStart:], separator)
		if i < 0 {
			reverseBytes(p[wordStart:])
			break
		}
		reverseBytes(p[wordStart : wordStart+i])
		wordStart += i + 1
	}
	reverseBytes(p)
}

func reverseBytes(p []byte) {
	for i, j := 0, len(p)-1; i < j; i, j = i+1, j-1 {
		p[i], p[j] = p[j], p[i]
	}
}
