package handlers

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"rationtrack/database"
	"rationtrack/store"
)

// HandleChatbotQuery answers a citizen's question through the Gemini API,
// grounded in the current stock position of the shop they ask about.
// POST /api/v1/chatbot/query
func HandleChatbotQuery(c *fiber.Ctx) error {
	var body struct {
		Message  string `json:"message"`
		Language string `json:"language"`
		ShopID   string `json:"shopId"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Invalid request body"})
	}
	if strings.TrimSpace(body.Message) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Field message is required"})
	}
	if body.Language == "" {
		body.Language = "English"
	}

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "error", "message": "Chatbot not configured"})
	}

	// Ground the assistant in what the shop actually has right now, so it
	// does not invent stock numbers.
	stockContext := ""
	if body.ShopID != "" {
		supplies := store.NewSupplyStore(database.GetDB())
		levels, err := supplies.LatestStockLevels(c.Context(), body.ShopID)
		if err != nil {
			log.Printf("Error loading stock context for chatbot (shop %s): %v", body.ShopID, err)
		} else if len(levels) > 0 {
			var sb strings.Builder
			sb.WriteString("Current stock at the shop:\n")
			for _, level := range levels {
				sb.WriteString(fmt.Sprintf("- %s: %.0f kg (%s), last updated %s\n",
					level.Commodity, level.CurrentStock, level.Status, level.LastUpdated.Format("02 Jan 2006")))
			}
			stockContext = sb.String()
		}
	}

	systemPrompt := fmt.Sprintf(
		"You are a helpful assistant for a public distribution system (ration shop) information service. "+
			"Answer questions about ration entitlements, shop stock, and delivery schedules. "+
			"Answer in %s. Keep answers short and practical. "+
			"If you do not know something, say so rather than guessing.\n\n%s",
		body.Language, stockContext)

	ctx := c.Context()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		log.Printf("Error creating Gemini client: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to initialize chatbot"})
	}
	defer client.Close()

	model := client.GenerativeModel("gemini-1.5-pro-latest")
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt)}}

	resp, err := model.GenerateContent(ctx, genai.Text(body.Message))
	if err != nil {
		log.Printf("Error generating chatbot response: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to generate response"})
	}

	answer := ""
	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if text, ok := part.(genai.Text); ok {
				answer += string(text)
			}
		}
	}
	if answer == "" {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Chatbot returned an empty response"})
	}

	return c.JSON(fiber.Map{"status": "success", "data": fiber.Map{"answer": answer, "language": body.Language}})
}
