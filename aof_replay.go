// aof_replay.go: replays the log at startup to rebuild the hash index
//
// Grounded on the scan-until-EOF-or-error loop of
// other_examples/1ebce939_rishabhverma17-HyperCache__internal-persistence-aof.go.go's
// Replay/parseLogEntry, adapted from newline-delimited text entries to
// the binary frame format of §3, including its truncated-frame
// tolerance and its fatal treatment of malformed frames.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0
package nubdb

import (
	"encoding/binary"
	"errors"
	"io"
	"os"
)

// replayAOF opens path and applies every well-formed frame directly to
// idx, bypassing the writer entirely (§4.3). A missing file is treated
// as an empty log. A truncated trailing frame ends replay normally,
// discarding only that last partial frame. A frame with an unknown op
// or an oversized key/value is fatal.
func replayAOF(path string, idx *index) error {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return NewErrOpenFailed(path, err)
	}
	defer f.Close()

	var offset int64
	header := make([]byte, 13) // timestamp(8) + op(1) + key_len(4)

	for {
		n, err := io.ReadFull(f, header)
		if err == io.EOF && n == 0 {
			return nil // clean end of log
		}
		if err != nil {
			// Partial header: truncated trailing frame, crash-consistent.
			return nil
		}

		op := header[8]
		keyLen := binary.LittleEndian.Uint32(header[9:13])
		if keyLen > KeyMax {
			return NewErrKeyTooLarge(offset, int(keyLen))
		}

		key := make([]byte, keyLen)
		if _, err := io.ReadFull(f, key); err != nil {
			return nil // truncated trailing frame
		}

		valueLenBuf := make([]byte, 4)
		if _, err := io.ReadFull(f, valueLenBuf); err != nil {
			return nil // truncated trailing frame
		}
		valueLen := binary.LittleEndian.Uint32(valueLenBuf)
		if valueLen > ValueMax {
			return NewErrValueTooLarge(offset, int(valueLen))
		}

		value := make([]byte, valueLen)
		if _, err := io.ReadFull(f, value); err != nil {
			return nil // truncated trailing frame
		}

		switch op {
		case opSet:
			idx.put(string(key), Record{Value: value, ExpireAt: 0})
		case opDelete:
			if valueLen != 0 {
				return NewErrLogCorrupt(offset, "DELETE frame carries a non-zero value length")
			}
			idx.remove(string(key))
		default:
			return NewErrUnknownOp(offset, op)
		}

		offset += int64(13 + int(keyLen) + 4 + int(valueLen))
	}
}
