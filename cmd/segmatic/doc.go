// Command segmatic segments speech audio: it runs voice activity detection
// over a corpus, cuts detected speech regions out of the originals without
// re-encoding, and writes a per-file CSV manifest.
package main
