package bot

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		data string
		want Command
	}{
		{"cart", Command{Kind: CmdCart}},
		{"add:12", Command{Kind: CmdAdd, Arg: "12"}},
		{"list:1|price_asc|Oziq-ovqat", Command{Kind: CmdList, Arg: "1|price_asc|Oziq-ovqat"}},
		{"list:0||Kat:egoriya", Command{Kind: CmdList, Arg: "0||Kat:egoriya"}},
	}
	for _, tt := range tests {
		t.Run(tt.data, func(t *testing.T) {
			got, err := ParseCommand(tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.data, got.String())
		})
	}

	_, err := ParseCommand("  ")
	assert.Error(t, err)
}

func TestCommand_ID(t *testing.T) {
	id, err := Command{Kind: CmdProduct, Arg: "7"}.ID()
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)

	for _, arg := range []string{"", "abc", "0", "-3"} {
		_, err := Command{Kind: CmdProduct, Arg: arg}.ID()
		assert.Error(t, err, arg)
	}
}

func TestListArgs(t *testing.T) {
	args := listArgs{Category: "Oziq-ovqat", SortBy: "discount", Page: 2}
	cmd, err := ParseCommand(args.String())
	require.NoError(t, err)
	assert.Equal(t, CmdList, cmd.Kind)
	assert.Equal(t, args, parseListArgs(cmd.Arg))

	assert.Equal(t, listArgs{}, parseListArgs(""))
	assert.Equal(t, listArgs{Page: 0, SortBy: "name"}, parseListArgs("-4|name"))
}

func TestFitsCallback(t *testing.T) {
	assert.True(t, fitsCallback(listArgs{Category: "Oziq-ovqat"}.String()))
	assert.False(t, fitsCallback(listArgs{Category: strings.Repeat("x", 64)}.String()))
}

func TestCategoriesKeyboardSkipsLongNames(t *testing.T) {
	kb := categoriesKeyboard([]string{"Non", strings.Repeat("uzun", 20)})
	require.Len(t, kb.InlineKeyboard, 2)
	assert.Equal(t, "list:0||Non", *kb.InlineKeyboard[1][0].CallbackData)
}

func TestSplitCommand(t *testing.T) {
	tests := []struct {
		text, cmd, args string
	}{
		{"/start", "/start", ""},
		{"/Start@store_bot", "/start", ""},
		{"/add_promo SALE10  15", "/add_promo", "SALE10  15"},
		{btnCart, btnCart, ""},
	}
	for _, tt := range tests {
		cmd, args := splitCommand(tt.text)
		assert.Equal(t, tt.cmd, cmd, tt.text)
		assert.Equal(t, tt.args, args, tt.text)
	}
}
