// Package validation проверяет пользовательский ввод до обращения к сервисам.
package validation

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"
)

// Константы валидации
const (
	MaxPartyIDLength          = 128
	MinDisputeTitleLength     = 3
	MaxDisputeTitleLength     = 200
	MinDisputeDescriptionLen  = 1
	MaxDisputeDescriptionLen  = 5000
	MaxCategoryLength         = 100
	MaxAmount                 = 100000000.0 // 100 миллионов
	MinReviewTitleLength      = 1
	MaxReviewTitleLength      = 200
	MinReviewContentLength    = 1
	MaxReviewContentLength    = 5000
	MaxProsConsItemLength     = 200
	MaxProsConsCount          = 20
	MinMessageLength          = 1
	MaxMessageLength          = 5000
	MaxEvidenceURLLength      = 1000
	MaxEvidenceDescriptionLen = 1000
	MaxReasonLength           = 1000
)

// ValidateLength проверяет длину строки.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s должен быть не менее %d символов", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s должен быть не более %d символов", fieldName, max)
	}
	return nil
}

// ValidateNonEmpty проверяет, что строка не пустая.
func ValidateNonEmpty(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s не может быть пустым", fieldName)
	}
	return nil
}

// ValidatePartyID проверяет идентификатор участника.
func ValidatePartyID(fieldName, id string) error {
	if err := ValidateNonEmpty(fieldName, id); err != nil {
		return err
	}
	return ValidateLength(fieldName, id, 0, MaxPartyIDLength)
}

// ValidateDisputeTitle проверяет заголовок спора.
func ValidateDisputeTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("заголовок спора обязателен")
	}
	return ValidateLength("заголовок спора", title, MinDisputeTitleLength, MaxDisputeTitleLength)
}

// ValidateDisputeDescription проверяет описание спора.
func ValidateDisputeDescription(description string) error {
	description = strings.TrimSpace(description)
	if description == "" {
		return fmt.Errorf("описание спора обязательно")
	}
	return ValidateLength("описание спора", description, MinDisputeDescriptionLen, MaxDisputeDescriptionLen)
}

// ValidateCategory проверяет категорию спора.
func ValidateCategory(category string) error {
	return ValidateLength("категория", strings.TrimSpace(category), 0, MaxCategoryLength)
}

// ValidateAmount проверяет сумму спора.
func ValidateAmount(amount *float64) error {
	if amount == nil {
		return nil
	}
	if *amount < 0 {
		return fmt.Errorf("сумма не может быть отрицательной")
	}
	if *amount > MaxAmount {
		return fmt.Errorf("сумма не может превышать %.0f", MaxAmount)
	}
	return nil
}

// ValidateRefund проверяет сумму и процент возврата.
func ValidateRefund(amount, percentage *float64) error {
	if err := ValidateAmount(amount); err != nil {
		return fmt.Errorf("возврат: %w", err)
	}
	if percentage != nil && (*percentage < 0 || *percentage > 100) {
		return fmt.Errorf("процент возврата должен быть от 0 до 100")
	}
	return nil
}

// ValidateReviewTitle проверяет заголовок отзыва.
func ValidateReviewTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("заголовок отзыва обязателен")
	}
	return ValidateLength("заголовок отзыва", title, MinReviewTitleLength, MaxReviewTitleLength)
}

// ValidateReviewContent проверяет текст отзыва.
func ValidateReviewContent(content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return fmt.Errorf("текст отзыва обязателен")
	}
	return ValidateLength("текст отзыва", content, MinReviewContentLength, MaxReviewContentLength)
}

// ValidateProsCons проверяет списки достоинств и недостатков.
func ValidateProsCons(fieldName string, items []string) error {
	if len(items) > MaxProsConsCount {
		return fmt.Errorf("%s: не более %d пунктов", fieldName, MaxProsConsCount)
	}

	seen := make(map[string]bool)
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			return fmt.Errorf("%s: пункт не может быть пустым", fieldName)
		}
		if utf8.RuneCountInString(item) > MaxProsConsItemLength {
			return fmt.Errorf("%s: пункт не может быть длиннее %d символов", fieldName, MaxProsConsItemLength)
		}

		// Проверка на дубликаты (без учета регистра)
		key := strings.ToLower(item)
		if seen[key] {
			return fmt.Errorf("%s: пункт '%s' указан дважды", fieldName, item)
		}
		seen[key] = true
	}

	return nil
}

// ValidateEvidenceURL проверяет ссылку на доказательство.
// Допускаются http(s) ссылки и ключи загруженных файлов без схемы.
func ValidateEvidenceURL(link string) error {
	link = strings.TrimSpace(link)
	if link == "" {
		return fmt.Errorf("ссылка на доказательство обязательна")
	}
	if err := ValidateLength("ссылка на доказательство", link, 0, MaxEvidenceURLLength); err != nil {
		return err
	}

	parsedURL, err := url.Parse(link)
	if err != nil {
		return fmt.Errorf("некорректный формат URL")
	}
	if parsedURL.Scheme == "" {
		return nil
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("ссылка должна начинаться с http:// или https://")
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("ссылка должна содержать доменное имя")
	}
	return nil
}

// ValidateMessageContent проверяет текст ответа или решения.
func ValidateMessageContent(content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return fmt.Errorf("сообщение не может быть пустым")
	}
	return ValidateLength("сообщение", content, MinMessageLength, MaxMessageLength)
}

// ValidateReason проверяет необязательную причину решения или жалобы.
func ValidateReason(reason string) error {
	return ValidateLength("причина", strings.TrimSpace(reason), 0, MaxReasonLength)
}
