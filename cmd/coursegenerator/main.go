package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"videocourse"
)

func main() {
	var (
		videoRef    = flag.String("video", "", "YouTube video URL or id (required)")
		moduleTitle = flag.String("module", "", "Module title to print the quiz for (default: print modules)")
		difficulty  = flag.String("difficulty", "medium", "Difficulty level (easy, medium, hard)")
		configPath  = flag.String("config", "", "Path to a YAML config file")
		outputFile  = flag.String("output", "", "Output file for JSON (default: stdout)")
		refresh     = flag.Bool("refresh", false, "Rebuild the modules even when they are cached")
		playMode    = flag.Bool("play", false, "Play the quizzes interactively")
		numPlayers  = flag.Int("players", 1, "Number of players for multiplayer mode")
		verbose     = flag.Bool("verbose", false, "Enable verbose debugging output")
	)

	flag.Parse()

	videocourse.SetVerbose(*verbose)
	logger := videocourse.Logger().Named("coursegenerator")

	if *videoRef == "" {
		logger.Error("video is required, use the -video flag")
		os.Exit(2)
	}
	videoID, ok := videocourse.ExtractVideoID(*videoRef)
	if !ok {
		logger.Error("could not find a video id", "video", *videoRef)
		os.Exit(2)
	}
	level, err := videocourse.ParseDifficulty(*difficulty)
	if err != nil {
		logger.Error("bad difficulty", "error", err)
		os.Exit(2)
	}

	cfg, err := videocourse.LoadConfig(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	course, store, err := videocourse.BuildCourse(ctx, cfg)
	if err != nil {
		logger.Error("failed to build course pipeline", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	if *refresh {
		if err := videocourse.NewCaches(store).Modules.Delete(ctx, videoID); err != nil {
			logger.Error("failed to evict cached modules", "error", err)
			os.Exit(1)
		}
		logger.Debug("evicted cached modules", "video_id", videoID)
	}

	modules, err := course.GetModules(ctx, *videoRef)
	if err != nil {
		logger.Error("failed to build modules", "error", err)
		os.Exit(1)
	}
	logger.Debug("modules ready", "video_id", videoID, "count", len(modules))

	if *playMode {
		if err := playCourse(ctx, course, videoID, modules, *moduleTitle, level, *numPlayers); err != nil {
			logger.Error("quiz failed", "error", err)
			os.Exit(1)
		}
		return
	}

	var result interface{} = modules
	if *moduleTitle != "" {
		quiz, err := course.GetQuiz(ctx, videoID, *moduleTitle, level)
		if err != nil {
			logger.Error("failed to build quiz", "module", *moduleTitle, "error", err)
			os.Exit(1)
		}
		result = quiz
	}

	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		logger.Error("failed to marshal output", "error", err)
		os.Exit(1)
	}

	if *outputFile != "" {
		if err := os.WriteFile(*outputFile, output, 0644); err != nil {
			logger.Error("failed to write output file", "error", err)
			os.Exit(1)
		}
		logger.Info("output saved", "path", *outputFile)
	} else {
		fmt.Println(string(output))
	}
}

// Player represents a player in the multiplayer quiz
type Player struct {
	Name  string
	Score int
}

// playCourse quizzes the players on one module, or on every module in order
// when moduleTitle is empty
func playCourse(ctx context.Context, course videocourse.Pipeline, videoID string, modules []videocourse.Module, moduleTitle string, difficulty videocourse.Difficulty, numPlayers int) error {
	if numPlayers < 1 {
		numPlayers = 1
	}

	fmt.Printf("🎯 Starting interactive quiz on video: %s\n", videoID)
	fmt.Printf("📝 Modules: %d, Difficulty: %s\n", len(modules), difficulty)
	fmt.Printf("👥 Players: %d\n", numPlayers)
	fmt.Println()

	players := make([]*Player, numPlayers)
	scanner := bufio.NewScanner(os.Stdin)

	for i := 0; i < numPlayers; i++ {
		fmt.Printf("Enter name for Player %d: ", i+1)
		scanner.Scan()
		name := strings.TrimSpace(scanner.Text())
		if name == "" {
			name = fmt.Sprintf("Player %d", i+1)
		}
		players[i] = &Player{Name: name}
	}
	fmt.Println()

	questionNum := 0
	for _, module := range modules {
		if moduleTitle != "" && module.Title != moduleTitle {
			continue
		}
		if module.QuizText() == "" {
			continue
		}

		fmt.Printf("📚 %s (%s - %s)\n", module.Title, clock(module.StartTime), clock(module.EndTime))
		fmt.Println("⏳ Loading questions... (this may take a moment)")
		fmt.Println()

		questions, err := course.GetQuiz(ctx, videoID, module.Title, difficulty)
		if err != nil {
			return err
		}

		for _, question := range questions {
			questionNum++
			askQuestion(scanner, players, question, questionNum)
		}
	}

	if questionNum == 0 {
		return fmt.Errorf("%w: %q", videocourse.ErrModuleNotFound, moduleTitle)
	}

	printResults(players, questionNum)
	return nil
}

func askQuestion(scanner *bufio.Scanner, players []*Player, question videocourse.QuizQuestion, questionNum int) {
	fmt.Printf("Question %d:\n", questionNum)
	fmt.Printf("%s\n\n", question.Question)

	for _, label := range videocourse.OptionLabels {
		fmt.Printf("%s) %s\n", label, question.Options[label])
	}
	fmt.Println()

	answers := make([]string, len(players))
	for i, player := range players {
		for {
			fmt.Printf("%s's answer (A/B/C/D): ", player.Name)
			if !scanner.Scan() {
				break
			}
			answer := strings.ToUpper(strings.TrimSpace(scanner.Text()))
			if _, ok := question.Options[answer]; ok {
				answers[i] = answer
				break
			}
			fmt.Println("Please enter A, B, C, or D")
		}
	}

	fmt.Println()
	for i, player := range players {
		if answers[i] == question.CorrectAnswer {
			fmt.Printf("✅ %s: Correct!\n", player.Name)
			player.Score++
		} else {
			fmt.Printf("❌ %s: Incorrect. The correct answer is %s) %s\n",
				player.Name, question.CorrectAnswer, question.Options[question.CorrectAnswer])
		}
	}

	if question.Explanation != "" {
		fmt.Printf("💡 Explanation: %s\n", question.Explanation)
	}

	fmt.Println("\n📊 Current Scores:")
	for _, player := range players {
		percentage := float64(player.Score) / float64(questionNum) * 100
		fmt.Printf("  %s: %d/%d (%.1f%%)\n", player.Name, player.Score, questionNum, percentage)
	}

	fmt.Println()
	fmt.Println(strings.Repeat("─", 50))
	fmt.Println()
}

func printResults(players []*Player, total int) {
	fmt.Println("🎉 Quiz completed!")
	fmt.Println("\n🏆 Final Results:")

	sort.SliceStable(players, func(i, j int) bool {
		return players[i].Score > players[j].Score
	})

	medals := []string{"🥇", "🥈", "🥉"}
	for i, player := range players {
		percentage := float64(player.Score) / float64(total) * 100
		prefix := "  "
		if i < len(medals) && i < len(players) {
			prefix = medals[i]
		}
		fmt.Printf("%s %s: %d/%d (%.1f%%)\n", prefix, player.Name, player.Score, total, percentage)
	}

	best := players[0]
	ratio := float64(best.Score) / float64(total)
	if len(players) > 1 {
		fmt.Printf("\n🎊 Winner: %s with %d/%d correct answers (%.1f%%)\n",
			best.Name, best.Score, total, ratio*100)
	}

	switch {
	case ratio >= 0.8:
		fmt.Println("🌟 Excellent work!")
	case ratio >= 0.6:
		fmt.Println("👍 Good job!")
	default:
		fmt.Println("📚 Keep studying!")
	}
}

// clock formats seconds as m:ss
func clock(seconds float64) string {
	s := int(seconds)
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}
