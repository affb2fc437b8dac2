package relay

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/zulandar/semaphore/internal/models"
	"github.com/zulandar/semaphore/internal/pipeline"
	"github.com/zulandar/semaphore/internal/store"
)

// replayCap bounds how many historical messages a single replay examines,
// regardless of the rule's time-filter window.
const replayCap = 500

const replayBatchSize = 100

// ReplayResult summarizes one historical replay run.
type ReplayResult struct {
	Fetched   int `json:"fetched"`
	Forwarded int `json:"forwarded"`
	Skipped   int `json:"skipped"`
	Errors    int `json:"errors"`
}

// Replay fetches a rule's historical window from the source chat and runs
// each message through the same gate chain as the live path. Messages
// already recorded as successfully forwarded are skipped, so replaying
// twice is harmless.
func Replay(ctx context.Context, gdb *gorm.DB, t Transport, rule *models.ForwardRule) ReplayResult {
	var res ReplayResult
	start, end := pipeline.ReplayWindow(rule, time.Now())

	var offsetID int64
fetch:
	for res.Fetched < replayCap {
		limit := replayBatchSize
		if remaining := replayCap - res.Fetched; remaining < limit {
			limit = remaining
		}
		batch, err := t.History(ctx, rule.SourceChatID, HistoryRequest{
			Limit:    limit,
			OffsetID: offsetID,
			Since:    start,
			Until:    end,
		})
		if err != nil {
			log.Printf("relay: replay rule %q: history: %v", rule.Name, err)
			res.Errors++
			break
		}
		if len(batch) == 0 {
			break
		}

		// History is newest first; stop once we walk past the window start.
		for _, msg := range batch {
			if msg.Date.Before(start) {
				break fetch
			}
			offsetID = msg.ID
			if msg.Date.After(end) {
				continue
			}
			res.Fetched++
			replayOne(ctx, gdb, t, rule, msg, &res)
			if res.Fetched >= replayCap {
				break fetch
			}
		}
		if len(batch) < limit {
			break
		}
	}
	return res
}

// replayOne runs the shared gate chain for a single historical message.
func replayOne(ctx context.Context, gdb *gorm.DB, t Transport, rule *models.ForwardRule, msg Message, res *ReplayResult) {
	seen, err := store.WasForwarded(gdb, msg.ID, msg.ChatID, rule.Name)
	if err != nil {
		log.Printf("relay: replay rule %q: %v", rule.Name, err)
		res.Errors++
		return
	}
	if seen {
		res.Skipped++
		return
	}

	if !pipeline.AllowsKind(rule, msg.Kind) {
		res.Skipped++
		return
	}

	var keywords []models.Keyword
	if rule.EnableKeywordFilter {
		keywords = rule.Keywords
	}
	var replaceRules []models.ReplaceRule
	if rule.EnableRegexReplace {
		replaceRules = rule.ReplaceRules
	}
	text, ok := pipeline.ProcessMessage(msg.Text, keywords, replaceRules)
	if !ok {
		res.Skipped++
		return
	}
	text = pipeline.Truncate(text, rule.MaxMessageLength)

	entry := models.MessageLog{
		RuleID:          rule.ID,
		RuleName:        rule.Name,
		SourceMessageID: msg.ID,
		SourceChatID:    msg.ChatID,
		SourceChatName:  rule.SourceChatName,
		TargetChatID:    rule.TargetChatID,
		TargetChatName:  rule.TargetChatName,
		OriginalText:    msg.Text,
		ProcessedText:   text,
		MediaType:       msg.Kind.String(),
	}

	sendStart := time.Now()
	targetID, err := t.Send(ctx, SendRequest{
		ChatID:         rule.TargetChatID,
		Text:           text,
		DisablePreview: !rule.EnableLinkPreview,
		Media:          msg.Media,
	})
	entry.ProcessingTime = time.Since(sendStart).Milliseconds()
	if err != nil {
		entry.Status = models.StatusFailed
		entry.ErrorMessage = err.Error()
		res.Errors++
		log.Printf("relay: replay rule %q: send: %v", rule.Name, err)
	} else {
		entry.Status = models.StatusSuccess
		entry.TargetMessageID = targetID
		res.Forwarded++
	}
	if err := store.Append(gdb, &entry); err != nil {
		log.Printf("relay: replay rule %q: %v", rule.Name, err)
	}
}
