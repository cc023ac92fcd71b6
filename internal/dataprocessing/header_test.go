package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsHeaderRow(t *testing.T) {
	tests := []struct {
		name string
		row  []string
		want bool
	}{
		{name: "english keywords", row: []string{"Date", "City", "Cases"}, want: true},
		{name: "portuguese keywords", row: []string{"Data", "Municipio", "Novos Casos"}, want: true},
		{name: "location with numbers", row: []string{"location", "1", "2"}, want: true},
		{name: "singular case", row: []string{"case", "7", "8"}, want: true},
		{name: "death count", row: []string{"Death_Count", "7", "8"}, want: true},
		{name: "accented portuguese", row: []string{"Município", "10", "20"}, want: true},
		{name: "accented deaths", row: []string{"ÓBITOS", "10", "20"}, want: true},
		{name: "data row", row: []string{"2025-01-01", "Aracaju", "15"}, want: false},
		{name: "empty", row: nil, want: false},
		{name: "mostly text without keywords", row: []string{"dia_ref", "lugar", "x"}, want: true},
		{name: "half text is not enough", row: []string{"foo", "bar", "1", "2"}, want: false},
		{name: "numbers with punctuation", row: []string{"1.500", "2,5", "-3", "01/02/2025"}, want: false},
		{name: "blank cells count as text", row: []string{"", "", "1"}, want: true},
		{name: "padded numbers", row: []string{" 15 ", " 3 ", "Aracaju"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsHeaderRow(tt.row))
		})
	}
}
