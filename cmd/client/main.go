// Command client is a terminal front end over the SDK: log in (or resume a
// persisted session), pick a conversation partner, then chat with realtime
// push and poll fallback.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog/log"

	"betpanel-client/internal/api"
	"betpanel-client/internal/common/config"
	"betpanel-client/internal/common/logger"
	"betpanel-client/internal/messaging"
	"betpanel-client/internal/models"
	"betpanel-client/internal/realtime"
	"betpanel-client/internal/session"
)

func main() {
	username := flag.String("user", "", "username for login (omit to resume a saved session)")
	password := flag.String("pass", "", "password for login")
	partner := flag.Int64("partner", 0, "account id to open a conversation with")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger.Init("betpanel-client", cfg.Debug)

	client := api.NewClient(cfg.Platform.BaseURL, cfg.Platform.Timeout)

	var persist session.Persistence
	if cfg.Session.RedisAddr != "" {
		redisPersist, err := session.NewRedisPersistence(cfg.Session.RedisAddr, cfg.Session.RedisPassword, cfg.Session.RedisDB)
		if err != nil {
			log.Fatal().Err(err).Msg("redis session store unavailable")
		}
		persist = redisPersist
	} else {
		persist = session.NewFilePersistence(cfg.Session.File)
	}

	sessions := session.NewStore(client, persist)
	if err := sessions.Hydrate(ctx); err != nil {
		log.Warn().Err(err).Msg("saved session rejected")
	}

	if sessions.User() == nil {
		if *username == "" || *password == "" {
			log.Fatal().Msg("no saved session; pass -user and -pass to log in")
		}
		if _, err := sessions.Login(ctx, *username, *password); err != nil {
			log.Fatal().Err(err).Msg("login failed")
		}
	}
	user := sessions.User()
	fmt.Printf("logged in as %s (%s)\n", user.Username, user.Role)

	channel := realtime.NewChannel(cfg.Platform.WSBaseURL, sessions.Token())
	defer channel.Close()

	vm := messaging.NewViewModel(client, channel, user.ID, cfg.Messaging.PollInterval)
	channel.SetHandler(func(msg models.Message) {
		vm.HandlePush(msg)
		if msg.SenderID != user.ID {
			fmt.Printf("\r<%d> %s\n> ", msg.SenderID, msg.Body)
		}
	})
	if err := channel.Open(ctx); err != nil {
		log.Warn().Err(err).Msg("realtime unavailable, falling back to polling")
	}
	vm.Start()
	defer vm.Stop()

	contacts, err := vm.RefreshContacts(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("contact list failed")
	}
	fmt.Println("contacts:")
	for _, c := range contacts {
		fmt.Printf("  %d  %s (%s), %d unread\n", c.ID, c.DisplayName, c.Role, c.Unread)
	}

	if *partner == 0 {
		fmt.Println("pass -partner <id> to open a conversation")
		<-ctx.Done()
		return
	}

	if err := vm.SelectPartner(ctx, *partner); err != nil {
		log.Fatal().Err(err).Msg("conversation load failed")
	}
	for _, m := range vm.Messages() {
		fmt.Printf("<%d> %s\n", m.SenderID, m.Body)
	}

	// Read lines until EOF or signal; each line is one message.
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	fmt.Print("> ")
	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			body := strings.TrimSpace(line)
			if body == "" {
				fmt.Print("> ")
				continue
			}
			if err := vm.Send(ctx, body, ""); err != nil {
				log.Error().Err(err).Msg("send failed")
			}
			fmt.Print("> ")
		}
	}
}
