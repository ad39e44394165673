package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// CommandKind is the verb of an inline button. Buttons carry "kind:arg".
type CommandKind string

const (
	CmdCategories CommandKind = "cats"
	CmdList       CommandKind = "list"
	CmdProduct    CommandKind = "prod"
	CmdAdd        CommandKind = "add"
	CmdInc        CommandKind = "inc"
	CmdDec        CommandKind = "dec"
	CmdRemove     CommandKind = "rm"
	CmdEditQty    CommandKind = "qty"
	CmdCart       CommandKind = "cart"
	CmdClearCart  CommandKind = "clear"
	CmdCheckout   CommandKind = "checkout"
	CmdPromo      CommandKind = "promo"
	CmdSubmit     CommandKind = "submit"
	CmdConfirm    CommandKind = "confirm"
	CmdBack       CommandKind = "back"
	CmdNoop       CommandKind = "noop"
)

// callbackDataLimit is the Telegram limit for callback_data in bytes.
const callbackDataLimit = 64

// Command is a decoded callback token.
type Command struct {
	Kind CommandKind
	Arg  string
}

func (c Command) String() string {
	if c.Arg == "" {
		return string(c.Kind)
	}
	return string(c.Kind) + ":" + c.Arg
}

// ParseCommand decodes callback data. The argument may itself contain ':'.
func ParseCommand(data string) (Command, error) {
	data = strings.TrimSpace(data)
	if data == "" {
		return Command{}, fmt.Errorf("empty callback data")
	}
	kind, arg, _ := strings.Cut(data, ":")
	return Command{Kind: CommandKind(kind), Arg: arg}, nil
}

// ID returns the argument as a product id.
func (c Command) ID() (int64, error) {
	id, err := strconv.ParseInt(c.Arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("command %s: bad id %q", c.Kind, c.Arg)
	}
	return id, nil
}

func productCommand(kind CommandKind, id int64) string {
	return Command{Kind: kind, Arg: strconv.FormatInt(id, 10)}.String()
}

// listArgs selects a catalog page: category, sort key and zero-based page.
type listArgs struct {
	Category string
	SortBy   string
	Page     int
}

func (a listArgs) String() string {
	return Command{Kind: CmdList, Arg: fmt.Sprintf("%d|%s|%s", a.Page, a.SortBy, a.Category)}.String()
}

func parseListArgs(arg string) listArgs {
	parts := strings.SplitN(arg, "|", 3)
	var out listArgs
	if len(parts) > 0 {
		out.Page, _ = strconv.Atoi(parts[0])
		if out.Page < 0 {
			out.Page = 0
		}
	}
	if len(parts) > 1 {
		out.SortBy = parts[1]
	}
	if len(parts) > 2 {
		out.Category = parts[2]
	}
	return out
}

// fitsCallback reports whether data can be sent as callback_data.
func fitsCallback(data string) bool {
	return len(data) <= callbackDataLimit
}

type callbackRequest struct {
	callbackID string
	chatID     int64
	messageID  int
	userID     int64
	username   string
}

type commandHandler func(ctx context.Context, req callbackRequest, cmd Command)

func (b *Bot) commandTable() map[CommandKind]commandHandler {
	return map[CommandKind]commandHandler{
		CmdCategories: b.onCategories,
		CmdList:       b.onList,
		CmdProduct:    b.onProduct,
		CmdAdd:        b.onAdd,
		CmdInc:        b.onInc,
		CmdDec:        b.onDec,
		CmdRemove:     b.onRemove,
		CmdEditQty:    b.onEditQty,
		CmdCart:       b.onCart,
		CmdClearCart:  b.onClearCart,
		CmdCheckout:   b.onCheckout,
		CmdPromo:      b.onPromo,
		CmdSubmit:     b.onSubmit,
		CmdConfirm:    b.onConfirm,
		CmdBack:       b.onBack,
		CmdNoop:       func(context.Context, callbackRequest, Command) {},
	}
}
