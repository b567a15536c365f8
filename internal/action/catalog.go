package action

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/yiblet/clipvault/internal/content"
)

var errNoClip = errors.New("content has no stored clip")

// Catalog returns the built-in actions: type-specific first, then standard,
// then meta.
func Catalog() []SmartAction {
	var out []SmartAction
	out = append(out, urlActions()...)
	out = append(out, emailActions()...)
	out = append(out, colorActions()...)
	out = append(out, codeActions()...)
	out = append(out, csvActions()...)
	out = append(out, dateActions()...)
	out = append(out, phoneActions()...)
	out = append(out, mathActions()...)
	out = append(out, secretActions()...)
	out = append(out, standardActions()...)
	out = append(out, metaActions()...)
	return out
}

func clipID(c content.Content) int64 {
	if c.Clip == nil {
		return 0
	}
	return c.Clip.ID
}

func always(content.Content) bool { return true }

func urlActions() []SmartAction {
	meta := func(c content.Content) (content.URLMetadata, bool) {
		m, ok := c.Metadata.(content.URLMetadata)
		return m, ok && c.Type == content.TypeURL
	}
	return []SmartAction{
		{
			ID:       "open-url",
			Label:    "Open in browser",
			Category: CategorySmart,
			Check: func(c content.Content) bool {
				m, ok := meta(c)
				return ok && m.URL != ""
			},
			Execute: func(ctx context.Context, env Env, c content.Content) error {
				m, _ := meta(c)
				return env.Open(ctx, m.URL)
			},
		},
		{
			ID:       "copy-domain",
			Label:    "Copy domain",
			Category: CategorySmart,
			Check: func(c content.Content) bool {
				m, ok := meta(c)
				return ok && m.Domain != ""
			},
			Execute: func(ctx context.Context, env Env, c content.Content) error {
				m, _ := meta(c)
				return env.Copy(ctx, m.Domain, 0)
			},
		},
	}
}

func emailActions() []SmartAction {
	meta := func(c content.Content) (content.EmailMetadata, bool) {
		m, ok := c.Metadata.(content.EmailMetadata)
		return m, ok && c.Type == content.TypeEmail
	}
	return []SmartAction{
		{
			ID:       "compose-email",
			Label:    "Compose email",
			Category: CategorySmart,
			Check: func(c content.Content) bool {
				m, ok := meta(c)
				return ok && m.Email != ""
			},
			Execute: func(ctx context.Context, env Env, c content.Content) error {
				m, _ := meta(c)
				return env.Open(ctx, "mailto:"+m.Email)
			},
		},
		{
			ID:       "copy-email-domain",
			Label:    "Copy email domain",
			Category: CategorySmart,
			Check: func(c content.Content) bool {
				m, ok := meta(c)
				return ok && m.Domain != ""
			},
			Execute: func(ctx context.Context, env Env, c content.Content) error {
				m, _ := meta(c)
				return env.Copy(ctx, m.Domain, 0)
			},
		},
	}
}

func colorActions() []SmartAction {
	meta := func(c content.Content) (content.ColorMetadata, bool) {
		m, ok := c.Metadata.(content.ColorMetadata)
		return m, ok && c.Type == content.TypeColor
	}
	return []SmartAction{
		{
			ID:       "copy-hex",
			Label:    "Copy as hex",
			Category: CategorySmart,
			Check: func(c content.Content) bool {
				m, ok := meta(c)
				return ok && m.Hex != ""
			},
			Execute: func(ctx context.Context, env Env, c content.Content) error {
				m, _ := meta(c)
				return env.Copy(ctx, strings.ToLower(m.Hex), 0)
			},
		},
		{
			ID:       "copy-rgb",
			Label:    "Copy as rgb()",
			Category: CategorySmart,
			Check: func(c content.Content) bool {
				m, ok := meta(c)
				if !ok {
					return false
				}
				_, err := hexToRGB(m.Hex)
				return err == nil
			},
			Execute: func(ctx context.Context, env Env, c content.Content) error {
				m, _ := meta(c)
				rgb, err := hexToRGB(m.Hex)
				if err != nil {
					return err
				}
				return env.Copy(ctx, rgb, 0)
			},
		},
	}
}

func codeActions() []SmartAction {
	return []SmartAction{
		{
			ID:       "copy-markdown-fence",
			Label:    "Copy as Markdown code block",
			Category: CategorySmart,
			Check: func(c content.Content) bool {
				_, ok := c.Metadata.(content.CodeMetadata)
				return ok && c.Type == content.TypeCode && c.Text != ""
			},
			Execute: func(ctx context.Context, env Env, c content.Content) error {
				m := c.Metadata.(content.CodeMetadata)
				return env.Copy(ctx, markdownFence(m.Language, c.Text), 0)
			},
		},
	}
}

func csvActions() []SmartAction {
	meta := func(c content.Content) (content.CSVMetadata, bool) {
		m, ok := c.Metadata.(content.CSVMetadata)
		return m, ok && c.Type == content.TypeCSV && m.Delimiter != ""
	}
	return []SmartAction{
		{
			ID:       "copy-as-tsv",
			Label:    "Copy as TSV",
			Category: CategorySmart,
			Check: func(c content.Content) bool {
				m, ok := meta(c)
				return ok && m.Delimiter != "\t"
			},
			Execute: func(ctx context.Context, env Env, c content.Content) error {
				m, _ := meta(c)
				rows, err := parseDelimited(c.Text, m.Delimiter)
				if err != nil {
					return err
				}
				return env.Copy(ctx, toTSV(rows), 0)
			},
		},
		{
			ID:       "copy-as-markdown-table",
			Label:    "Copy as Markdown table",
			Category: CategorySmart,
			Check: func(c content.Content) bool {
				_, ok := meta(c)
				return ok
			},
			Execute: func(ctx context.Context, env Env, c content.Content) error {
				m, _ := meta(c)
				rows, err := parseDelimited(c.Text, m.Delimiter)
				if err != nil {
					return err
				}
				return env.Copy(ctx, toMarkdownTable(rows), 0)
			},
		},
	}
}

func dateActions() []SmartAction {
	meta := func(c content.Content) (content.DateMetadata, bool) {
		m, ok := c.Metadata.(content.DateMetadata)
		return m, ok && (c.Type == content.TypeDate || c.Type == content.TypeTimestamp)
	}
	return []SmartAction{
		{
			ID:       "copy-iso",
			Label:    "Copy as ISO 8601",
			Category: CategorySmart,
			Check: func(c content.Content) bool {
				m, ok := meta(c)
				return ok && m.ISO != ""
			},
			Execute: func(ctx context.Context, env Env, c content.Content) error {
				m, _ := meta(c)
				return env.Copy(ctx, m.ISO, 0)
			},
		},
		{
			ID:       "copy-unix",
			Label:    "Copy as Unix timestamp",
			Category: CategorySmart,
			Check: func(c content.Content) bool {
				m, ok := meta(c)
				if !ok {
					return false
				}
				_, err := unixSeconds(m)
				return err == nil
			},
			Execute: func(ctx context.Context, env Env, c content.Content) error {
				m, _ := meta(c)
				secs, err := unixSeconds(m)
				if err != nil {
					return err
				}
				return env.Copy(ctx, strconv.FormatInt(secs, 10), 0)
			},
		},
	}
}

func phoneActions() []SmartAction {
	meta := func(c content.Content) (content.PhoneMetadata, bool) {
		m, ok := c.Metadata.(content.PhoneMetadata)
		return m, ok && c.Type == content.TypePhone && phoneDigits(m.Number) != ""
	}
	return []SmartAction{
		{
			ID:       "call-phone",
			Label:    "Call",
			Category: CategorySmart,
			Check: func(c content.Content) bool {
				_, ok := meta(c)
				return ok
			},
			Execute: func(ctx context.Context, env Env, c content.Content) error {
				m, _ := meta(c)
				return env.Open(ctx, "tel:"+phoneDigits(m.Number))
			},
		},
		{
			ID:       "copy-digits",
			Label:    "Copy digits only",
			Category: CategorySmart,
			Check: func(c content.Content) bool {
				_, ok := meta(c)
				return ok
			},
			Execute: func(ctx context.Context, env Env, c content.Content) error {
				m, _ := meta(c)
				return env.Copy(ctx, phoneDigits(m.Number), 0)
			},
		},
	}
}

func mathActions() []SmartAction {
	return []SmartAction{
		{
			ID:       "copy-result",
			Label:    "Copy result",
			Category: CategorySmart,
			Check: func(c content.Content) bool {
				m, ok := c.Metadata.(content.MathMetadata)
				return ok && c.Type == content.TypeMath && m.HasResult
			},
			Execute: func(ctx context.Context, env Env, c content.Content) error {
				m := c.Metadata.(content.MathMetadata)
				return env.Copy(ctx, strconv.FormatFloat(m.Result, 'f', -1, 64), 0)
			},
		},
	}
}

func secretActions() []SmartAction {
	return []SmartAction{
		{
			ID:       "copy-and-delete",
			Label:    "Copy and forget",
			Category: CategorySmart,
			Check: func(c content.Content) bool {
				return c.Type == content.TypeSecret && c.Clip != nil
			},
			Execute: func(ctx context.Context, env Env, c content.Content) error {
				if err := env.Copy(ctx, c.Text, 0); err != nil {
					return err
				}
				return env.Delete(ctx, c.Clip.ID)
			},
		},
	}
}

func standardActions() []SmartAction {
	return []SmartAction{
		{
			ID:       "copy",
			Label:    "Copy",
			Category: CategoryStandard,
			Check:    always,
			Execute: func(ctx context.Context, env Env, c content.Content) error {
				return env.Copy(ctx, c.Text, clipID(c))
			},
		},
		{
			ID:       "paste",
			Label:    "Paste",
			Category: CategoryStandard,
			Check:    always,
			Execute: func(ctx context.Context, env Env, c content.Content) error {
				return env.Paste(ctx, c.Text, clipID(c))
			},
		},
		{
			ID:       "open-in-editor",
			Label:    "Open in editor",
			Category: CategoryStandard,
			Check:    always,
			Execute: func(ctx context.Context, env Env, c content.Content) error {
				return env.Edit(ctx, c)
			},
		},
	}
}

func metaActions() []SmartAction {
	needClip := func(c content.Content) error {
		if c.Clip == nil {
			return errNoClip
		}
		return nil
	}
	return []SmartAction{
		{
			ID:       "favorite",
			Label:    "Favorite",
			Category: CategoryMeta,
			Check:    always,
			IsActive: func(c content.Content) bool { return c.Clip != nil && c.Clip.IsFavorite },
			Execute: func(ctx context.Context, env Env, c content.Content) error {
				if err := needClip(c); err != nil {
					return err
				}
				_, err := env.ToggleFavorite(ctx, c.Clip.ID)
				return err
			},
		},
		{
			ID:       "pin",
			Label:    "Pin",
			Category: CategoryMeta,
			Check:    always,
			IsActive: func(c content.Content) bool { return c.Clip != nil && c.Clip.IsPinned },
			Execute: func(ctx context.Context, env Env, c content.Content) error {
				if err := needClip(c); err != nil {
					return err
				}
				_, err := env.TogglePin(ctx, c.Clip.ID)
				return err
			},
		},
		{
			ID:       "delete",
			Label:    "Delete",
			Category: CategoryMeta,
			Check:    always,
			Execute: func(ctx context.Context, env Env, c content.Content) error {
				if err := needClip(c); err != nil {
					return fmt.Errorf("delete: %w", err)
				}
				return env.Delete(ctx, c.Clip.ID)
			},
		},
	}
}
