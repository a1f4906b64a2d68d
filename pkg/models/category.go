package models

import "time"

// Category groups tasks under a name and a display colour
type Category struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Color     string    `json:"color" db:"color"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CategoryPalette lists the colours offered by the category editor.
// Bright colours first, then the softer ones.
var CategoryPalette = []string{
	"#2563eb", // blue
	"#16a34a", // green
	"#dc2626", // red
	"#9333ea", // purple
	"#ea580c", // orange
	"#0d9488", // teal
	"#4f46e5", // indigo
	"#be185d", // pink
	"#f59e0b", // amber
	"#10b981", // emerald
	"#6366f1", // violet
	"#ec4899", // pink
	"#38bdf8", // sky blue
	"#34d399", // emerald green
	"#a78bfa", // soft purple
	"#fbbf24", // warm yellow
	"#fb923c", // soft orange
	"#22d3ee", // cyan
	"#818cf8", // soft indigo
	"#f472b6", // soft pink
}

// InPalette reports whether color is one of the editor's preset colours.
func InPalette(color string) bool {
	for _, c := range CategoryPalette {
		if c == color {
			return true
		}
	}
	return false
}
