package twitter

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// maxPostLength is the platform limit per tweet.
	maxPostLength = 280

	// shortenedURLLength is what t.co charges for any URL, regardless of
	// its actual character count.
	shortenedURLLength = 23

	// firstDecorationLength covers the newline before the hashtags plus
	// the "\n🔗 " separator before the link; the platform counts the link
	// emoji as two characters.
	firstDecorationLength = 5

	// contDecorationLength covers the newline before the hashtag suffix on
	// continuation tweets.
	contDecorationLength = 1
)

// Poster is the posting capability PostThread needs; satisfied by *Client.
type Poster interface {
	CreateTweet(ctx context.Context, text, inReplyTo string) (string, error)
}

// PostThread publishes summary as a chain of tweets. Every tweet carries
// the hashtag suffix; the link appears on the first tweet only. Returns
// the id of the last tweet in the chain. A publish failure aborts the
// remaining chain — already-published tweets stay up.
func PostThread(ctx context.Context, poster Poster, summary, link, hashtags string) (string, error) {
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return "", fmt.Errorf("empty summary")
	}

	suffixLen := utf8.RuneCountInString(hashtags)

	firstAllowance := maxPostLength - shortenedURLLength - suffixLen - firstDecorationLength
	contAllowance := maxPostLength - suffixLen - contDecorationLength
	if firstAllowance < 1 || contAllowance < 1 {
		return "", fmt.Errorf("hashtag suffix %q leaves no room for text", hashtags)
	}

	chunk, rest := splitAtBoundary(summary, firstAllowance)
	first := chunk + "\n" + hashtags + "\n🔗 " + link

	tail, err := poster.CreateTweet(ctx, first, "")
	if err != nil {
		return "", fmt.Errorf("post first tweet: %w", err)
	}
	slog.Info("posted first tweet", "id", tail, "chars", utf8.RuneCountInString(first))

	for rest != "" {
		chunk, rest = splitAtBoundary(rest, contAllowance)
		text := chunk + "\n" + hashtags

		id, err := poster.CreateTweet(ctx, text, tail)
		if err != nil {
			// The chain stops here; tweets already posted are not retracted.
			slog.Warn("thread aborted mid-chain", "lastPosted", tail, "error", err)
			return "", fmt.Errorf("post reply tweet: %w", err)
		}
		tail = id
		slog.Info("posted reply tweet", "id", tail)
	}

	return tail, nil
}

// splitAtBoundary cuts text after at most limit runes without breaking a
// word. Cuts happen only at whitespace, so a hashtag token is never split:
// when the limit lands inside one, the cut backs up to the whitespace
// before it. Only when no whitespace exists at all before the limit does
// it fall back to a hard character cut.
func splitAtBoundary(text string, limit int) (string, string) {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) <= limit {
		return text, ""
	}

	cut := -1
	for i := limit; i >= 0; i-- {
		if unicode.IsSpace(runes[i]) {
			cut = i
			break
		}
	}
	if cut == -1 {
		// No whitespace anywhere before the limit; hard cut.
		return string(runes[:limit]), strings.TrimSpace(string(runes[limit:]))
	}

	head := strings.TrimRight(string(runes[:cut]), " \t\n")
	rest := strings.TrimSpace(string(runes[cut:]))
	return head, rest
}
