package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"newsdesk/internal/model"
	"newsdesk/internal/notify"
	"newsdesk/internal/publisher"
	"newsdesk/internal/registry"
	"newsdesk/internal/server"
	"newsdesk/internal/store"

	"github.com/go-shiori/go-readability"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	logger     *zap.Logger
	redisAddr  string
	badgerPath string
	port       string
	clipAuthor string
)

var rootCmd = &cobra.Command{
	Use:   "newsdesk",
	Short: "newsdesk - A news publishing server with scheduled publication",
}

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the publication engine and web API",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Setup Signal Handling (Ctrl+C)
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigChan
			logger.Info("Shutting down...")
			cancel()
		}()

		// Initialize Store (FULL MODE - Redis + Badger)
		st, err := store.NewHybridStore(redisAddr, badgerPath)
		if err != nil {
			logger.Fatal("Failed to init store", zap.Error(err))
		}
		defer st.Close()

		hub := notify.NewHub(logger)
		reg := registry.New(logger)
		defer reg.Stop()

		pub := publisher.New(st, reg, hub, logger)

		// Rearm pending publication timers before taking requests.
		if _, err := pub.Recover(ctx); err != nil {
			logger.Fatal("Failed to recover scheduled articles", zap.Error(err))
		}

		srv := server.NewServer(st, pub, hub, logger)
		go func() {
			if err := srv.Start(port); err != nil {
				logger.Error("Server stopped", zap.Error(err))
				cancel()
			}
		}()

		logger.Info("Server running.")

		// Block until shutdown
		<-ctx.Done()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Stop(shutdownCtx); err != nil {
			logger.Error("Shutdown error", zap.Error(err))
		}
		logger.Info("Goodbye!")
	},
}

var clipCmd = &cobra.Command{
	Use:   "clip [url]",
	Short: "Save a web page as a draft article",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		url := args[0]

		// Badger holds a single-process lock; clip is an offline tool.
		st, err := store.NewHybridStore(redisAddr, badgerPath)
		if err != nil {
			logger.Fatal("Failed to init store", zap.Error(err))
		}
		defer st.Close()

		page, err := readability.FromURL(url, 30*time.Second)
		if err != nil {
			logger.Fatal("Failed to fetch page", zap.String("url", url), zap.Error(err))
		}

		article := model.NewArticle(clipAuthor, page.Title, page.Content)
		if err := st.Create(context.Background(), &article); err != nil {
			logger.Fatal("Failed to save article", zap.Error(err))
		}

		logger.Info("Draft saved",
			zap.String("id", article.ID.String()),
			zap.String("title", article.Title),
			zap.String("url", url))
	},
}

func main() {
	var err error
	logger, err = zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	rootCmd.PersistentFlags().StringVar(&redisAddr, "redis", "localhost:6379", "Address of Redis server")
	rootCmd.PersistentFlags().StringVar(&badgerPath, "badger", "./badger-data", "Path to BadgerDB data directory")
	serverCmd.Flags().StringVar(&port, "port", "3000", "HTTP listen port")
	clipCmd.Flags().StringVar(&clipAuthor, "author", "local", "Author id for the clipped draft")

	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(clipCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
