package errors

import (
	"os"
	"runtime"
	"strings"
)

// Color 终端颜色
type Color int

const (
	ColorReset Color = iota
	ColorRed
	ColorYellow
	ColorCyan
	ColorBoldRed
	ColorBoldYellow
)

// ANSI 颜色代码
var ansiCodes = map[Color]string{
	ColorReset:      "\033[0m",
	ColorRed:        "\033[31m",
	ColorYellow:     "\033[33m",
	ColorCyan:       "\033[36m",
	ColorBoldRed:    "\033[1;31m",
	ColorBoldYellow: "\033[1;33m",
}

// colorsEnabled 是否启用颜色
var colorsEnabled = detectColorSupport()

// detectColorSupport 检测终端是否支持颜色
func detectColorSupport() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}

	term := os.Getenv("TERM")
	if runtime.GOOS == "windows" {
		// Windows Terminal 与新版控制台都支持 ANSI
		return term != "dumb"
	}
	if term == "dumb" {
		return false
	}

	// 检查 stderr 是否为 TTY（诊断输出到 stderr）
	if fileInfo, err := os.Stderr.Stat(); err == nil {
		if (fileInfo.Mode() & os.ModeCharDevice) != 0 {
			return true
		}
	}

	if os.Getenv("COLORTERM") != "" {
		return true
	}

	for _, ct := range []string{"xterm", "screen", "vt100", "linux", "ansi"} {
		if strings.Contains(strings.ToLower(term), ct) {
			return true
		}
	}
	return false
}

// ColorsEnabled 检查颜色是否启用
func ColorsEnabled() bool {
	return colorsEnabled
}

// SetColorsEnabled 设置颜色启用状态
func SetColorsEnabled(enabled bool) {
	colorsEnabled = enabled
}

func wrapColor(s string, c Color) string {
	code, ok := ansiCodes[c]
	if !ok {
		return s
	}
	return code + s + ansiCodes[ColorReset]
}
