package util

import "strings"

// EntryIcon returns a decorative icon for a directory listing row. Well
// known directory names get a dedicated icon, files fall back on their
// extension.
func EntryIcon(name string, isDir bool) string {
	if isDir {
		if icon, ok := dirIcons[strings.ToLower(name)]; ok {
			return icon
		}
		return "📁"
	}
	if icon, ok := extIcons[strings.ToLower(getExt(name))]; ok {
		return icon
	}
	return "📄"
}

func getExt(name string) string {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '.' {
			return name[i:]
		}
		if name[i] == '/' {
			break
		}
	}
	return ""
}

var dirIcons = map[string]string{
	".git":         "🔀",
	"node_modules": "📦",
	"vendor":       "📦",
	"target":       "🎯",
	"src":          "💻",
	"lib":          "📚",
	"test":         "🧪",
	"tests":        "🧪",
	"docs":         "📝",
	"bin":          "⚡",
	"tmp":          "🕐",
	"cache":        "💾",
	".cache":       "💾",
}

var extIcons = map[string]string{
	// Code
	".go":   "🐹",
	".py":   "🐍",
	".js":   "🟨",
	".ts":   "🔷",
	".rs":   "🦀",
	".c":    "🔵",
	".cpp":  "🔵",
	".java": "☕",
	".rb":   "💎",
	".sh":   "🐚",
	".html": "🌐",
	".css":  "🎨",

	// Data
	".json": "📋",
	".yaml": "📋",
	".yml":  "📋",
	".toml": "📋",
	".csv":  "📊",
	".sql":  "🗃️",

	// Documents
	".md":  "📝",
	".txt": "📄",
	".pdf": "📕",

	// Media
	".mp4":  "🎬",
	".mkv":  "🎬",
	".mov":  "🎬",
	".mp3":  "🎵",
	".flac": "🎵",
	".wav":  "🎵",
	".jpg":  "🖼️",
	".jpeg": "🖼️",
	".png":  "🖼️",
	".gif":  "🖼️",
	".svg":  "🖼️",

	// Archives
	".zip": "📦",
	".tar": "📦",
	".gz":  "📦",
	".7z":  "📦",
	".iso": "💿",

	// System
	".log":  "📜",
	".lock": "🔒",
	".db":   "🗄️",

	// Executables
	".exe": "⚡",
	".bin": "⚡",
}
