package bot

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/listing-microservice/internal/domain"
	"github.com/listing-microservice/internal/usecase/dto"
)

const skipAnswer = "-"

const (
	stepCity            = "city"
	stepDistrict        = "district"
	stepType            = "type"
	stepPrice           = "price"
	stepContactTelegram = "contact_telegram"
	stepContactPhone    = "contact_phone"
	titlePrefix         = "title:"
	descriptionPrefix   = "description:"
)

// Draft - объявление, собираемое по шагам
type Draft struct {
	City            string               `json:"city"`
	District        string               `json:"district"`
	Type            string               `json:"type"`
	Price           *float64             `json:"price,omitempty"`
	Title           domain.LocalizedText `json:"title"`
	Description     domain.LocalizedText `json:"description"`
	ContactTelegram *string              `json:"contact_telegram,omitempty"`
	ContactPhone    *string              `json:"contact_phone,omitempty"`
}

// Session - состояние диалога /add
type Session struct {
	Step  string `json:"step"`
	Draft Draft  `json:"draft"`
}

type step struct {
	name   string
	prompt string
	apply  func(d *Draft, answer string) (retry string)
}

// Outcome - результат перехода автомата
type Outcome struct {
	Reply   string
	Done    bool
	Request *dto.CreateListingRequest
}

// AddFlow - конечный автомат сбора объявления. Один шаг на поле.
type AddFlow struct {
	steps []step
	index map[string]int
}

// NewAddFlow builds the step list. The city step is omitted when defaultCity is set.
func NewAddFlow(defaultCity string, langs []string) *AddFlow {
	f := &AddFlow{index: make(map[string]int)}
	defaultCity = strings.TrimSpace(defaultCity)

	if defaultCity == "" {
		f.add(stepCity, "Город (например: varna):", func(d *Draft, a string) string {
			if a == "" || a == skipAnswer {
				return "Город обязателен."
			}
			d.City = strings.ToLower(a)
			return ""
		})
	}

	f.add(stepDistrict, "Ок. Введи district code (например: briz / chayka / center / vinitsa) или '-':", func(d *Draft, a string) string {
		if defaultCity != "" {
			d.City = defaultCity
		}
		if a != skipAnswer {
			d.District = strings.ToLower(a)
		}
		return ""
	})

	f.add(stepType, "Введи type code (apartment/house/studio/commercial/land).", func(d *Draft, a string) string {
		if a == "" || a == skipAnswer {
			return "Тип обязателен (apartment/house/studio/commercial/land)."
		}
		d.Type = strings.ToLower(a)
		return ""
	})

	f.add(stepPrice, "Цена числом (EUR), например 125000.", func(d *Draft, a string) string {
		price, err := strconv.ParseFloat(strings.ReplaceAll(a, " ", ""), 64)
		if err != nil || price < 0 || math.IsNaN(price) || math.IsInf(price, 0) {
			return "Цена должна быть числом (например 125000)."
		}
		d.Price = &price
		return ""
	})

	for _, lang := range langs {
		lang := lang
		f.add(titlePrefix+lang, fmt.Sprintf("Заголовок %s (или '-'):", strings.ToUpper(lang)), func(d *Draft, a string) string {
			if a != skipAnswer && a != "" {
				if d.Title == nil {
					d.Title = domain.LocalizedText{}
				}
				d.Title[lang] = a
			}
			return ""
		})
	}
	for _, lang := range langs {
		lang := lang
		f.add(descriptionPrefix+lang, fmt.Sprintf("Описание %s (или '-'):", strings.ToUpper(lang)), func(d *Draft, a string) string {
			if a != skipAnswer && a != "" {
				if d.Description == nil {
					d.Description = domain.LocalizedText{}
				}
				d.Description[lang] = a
			}
			return ""
		})
	}

	f.add(stepContactTelegram, "Контакт Telegram (например @yourusername) или '-' если не надо:", func(d *Draft, a string) string {
		d.ContactTelegram = optionalAnswer(a)
		return ""
	})
	f.add(stepContactPhone, "Телефон (+359...) или '-' если не надо:", func(d *Draft, a string) string {
		d.ContactPhone = optionalAnswer(a)
		return ""
	})

	return f
}

func (f *AddFlow) add(name, prompt string, apply func(d *Draft, answer string) (retry string)) {
	f.index[name] = len(f.steps)
	f.steps = append(f.steps, step{name: name, prompt: prompt, apply: apply})
}

// Steps returns the step names in order.
func (f *AddFlow) Steps() []string {
	names := make([]string, len(f.steps))
	for i, s := range f.steps {
		names[i] = s.name
	}
	return names
}

// Start returns a fresh session and the first prompt.
func (f *AddFlow) Start() (*Session, string) {
	first := f.steps[0]
	return &Session{Step: first.name}, first.prompt
}

// Advance applies answer to the current step. An invalid answer re-prompts
// without moving; the last step yields the create request.
func (f *AddFlow) Advance(s *Session, answer string) Outcome {
	i, ok := f.index[s.Step]
	if !ok {
		next, prompt := f.Start()
		*s = *next
		return Outcome{Reply: prompt}
	}

	answer = strings.TrimSpace(answer)
	if retry := f.steps[i].apply(&s.Draft, answer); retry != "" {
		return Outcome{Reply: retry}
	}

	if i+1 < len(f.steps) {
		s.Step = f.steps[i+1].name
		return Outcome{Reply: f.steps[i+1].prompt}
	}

	s.Step = ""
	return Outcome{Done: true, Request: s.Draft.request()}
}

func (d Draft) request() *dto.CreateListingRequest {
	return &dto.CreateListingRequest{
		City:            d.City,
		District:        d.District,
		Type:            d.Type,
		Price:           d.Price,
		Currency:        domain.DefaultCurrency,
		Title:           d.Title,
		Description:     d.Description,
		ContactTelegram: d.ContactTelegram,
		ContactPhone:    d.ContactPhone,
	}
}

func optionalAnswer(a string) *string {
	if a == "" || a == skipAnswer {
		return nil
	}
	return &a
}
