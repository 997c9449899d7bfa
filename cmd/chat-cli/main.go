package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"campaign-bot/internal/repository"
	"campaign-bot/internal/service"
	"campaign-bot/pkg/config"
	"campaign-bot/pkg/logger"
	"campaign-bot/pkg/postgres"

	"go.uber.org/zap"
)

// Interactive console client for the campaign knowledge store. Runs the same
// pipeline as the HTTP server against a terminal session.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Only errors reach the terminal, so log lines never interleave with the
	// conversation.
	if err := logger.Init("error"); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()

	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	knowledgeRepo := repository.NewKnowledgeRepository(db, appLogger)
	pageRepo := repository.NewPageRepository(db, appLogger)

	knowledgeService := service.NewKnowledgeService(knowledgeRepo, appLogger)
	if err := knowledgeService.Load(ctx); err != nil {
		appLogger.Fatal("Failed to load knowledge store", zap.Error(err))
	}

	contentService := service.NewContentService(pageRepo, knowledgeService, &cfg.Content, appLogger)

	generator, err := service.NewGenerator(cfg, appLogger)
	if err != nil {
		fmt.Println("Note: text generation is unavailable, answers fall back to raw matches.")
	} else {
		defer generator.Close()
	}

	retrievalService := service.NewRetrievalService(&cfg.Retrieval, appLogger)
	responderService := service.NewResponderService(generator, contentService, &cfg.Retrieval, &cfg.LLM, appLogger)
	chatService := service.NewChatService(knowledgeService, retrievalService, responderService, appLogger)

	runConsole(ctx, chatService, knowledgeService)
}

func runConsole(ctx context.Context, chat *service.ChatService, knowledge *service.KnowledgeService) {
	fmt.Println("Campaign Assistant Console")
	fmt.Println("Ask about Mussab Ali's 2025 Jersey City campaign.")
	fmt.Println("Questions are answered in English, Spanish, Arabic or French.")
	fmt.Println("Commands: 'stats' shows store statistics, 'quit' exits.")

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("\nYou: ")

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		switch strings.ToLower(line) {
		case "":
		case "quit", "exit", "q":
			fmt.Println("Goodbye!")
			return
		case "stats":
			printStats(knowledge.Stats())
		default:
			reply := chat.Process(ctx, line, "")
			fmt.Println("\nBot: " + reply.Text)
			fmt.Printf("(confidence %.2f, type %s, language %s, %d sources)\n",
				reply.Confidence, reply.Type, reply.Language, len(reply.Sources))
		}

		fmt.Print("\nYou: ")
	}

	if err := scanner.Err(); err != nil {
		fmt.Printf("\nInput error: %v\n", err)
	}
}

func printStats(stats service.StoreStats) {
	if !stats.Loaded {
		fmt.Println("Knowledge store is not loaded. Run the seeder first.")
		return
	}

	fmt.Printf("Knowledge store revision %d: %d items across %d topics\n",
		stats.Revision, stats.ItemCount, stats.TopicCount)
	fmt.Printf("Languages: %s\n", strings.Join(stats.Languages, ", "))
	for contentType, count := range stats.ByContentType {
		fmt.Printf("  %s: %d\n", contentType, count)
	}
	fmt.Printf("Loaded at: %s\n", stats.LoadedAt.Format("2006-01-02 15:04:05"))
}
