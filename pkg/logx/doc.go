// Package logx is cadenced's structured logger.
//
// Logger is a small value type over zerolog. Console output is human readable
// with a short file:line caller; the optional file sink writes JSON lines and
// is rotated by lumberjack.
package logx
