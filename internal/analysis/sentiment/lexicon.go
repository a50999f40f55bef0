package sentiment

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// afinnWords is a subset of the AFINN valence lexicon (-5 .. +5).
var afinnWords = map[string]float64{
	"abandon": -2, "abandoned": -2, "abuse": -3, "abused": -3, "accept": 1,
	"accepted": 1, "accident": -2, "accomplish": 2, "accomplished": 2, "accusation": -2,
	"accuse": -2, "accused": -2, "achievement": 2, "admire": 3, "admit": -1,
	"adorable": 3, "advantage": 2, "advantages": 2, "afraid": -2, "aggressive": -2,
	"agree": 1, "alarm": -2, "alarmed": -2, "alarming": -2, "amazing": 4,
	"ambitious": 2, "anger": -3, "angry": -3, "annoy": -2, "annoying": -2,
	"anxiety": -2, "anxious": -2, "appreciate": 2, "approval": 2, "approved": 2,
	"attack": -1, "attacked": -1, "award": 3, "awesome": 4, "awful": -3,
	"bad": -3, "ban": -2, "banned": -2, "benefit": 2, "benefits": 2,
	"best": 3, "better": 2, "bias": -1, "biased": -2, "blame": -2,
	"bless": 2, "bold": 2, "boost": 1, "bored": -2, "boring": -3,
	"breakthrough": 3, "brilliant": 4, "broken": -1, "bug": -2, "care": 2,
	"careful": 2, "catastrophe": -3, "catastrophic": -4, "celebrate": 3, "challenge": -1,
	"chaos": -2, "cheat": -3, "cheating": -3, "clarity": 2, "clever": 2,
	"comfortable": 2, "commitment": 2, "concern": -2, "concerned": -2, "concerns": -2,
	"confidence": 2, "confident": 2, "confused": -2, "confusion": -2, "conflict": -2,
	"controversial": -2, "cool": 1, "crash": -2, "crazy": -2, "creative": 2,
	"crime": -3, "crisis": -3, "critic": -2, "critical": -2, "criticism": -2,
	"criticize": -2, "cruel": -3, "cut": -1, "damage": -3, "damaged": -3,
	"danger": -2, "dangerous": -2, "dead": -3, "death": -2, "deceive": -3,
	"deception": -3, "defect": -3, "delight": 3, "delighted": 3, "deny": -2,
	"destroy": -3, "destroyed": -3, "destruction": -3, "difficult": -1, "disappointed": -2,
	"disappointing": -2, "disaster": -2, "discrimination": -2, "disinformation": -3, "dispute": -2,
	"distrust": -3, "doubt": -1, "dread": -2, "easy": 1, "effective": 2,
	"efficient": 2, "embarrassing": -2, "encourage": 2, "encouraged": 2, "encouraging": 2,
	"energetic": 2, "enjoy": 2, "enthusiastic": 3, "error": -2, "errors": -2,
	"excellent": 3, "excited": 3, "excitement": 3, "exciting": 3, "exploit": -2,
	"fail": -2, "failed": -2, "failure": -2, "fair": 2, "fake": -3,
	"false": -1, "fantastic": 4, "fascinating": 3, "fault": -2, "fear": -2,
	"fears": -2, "fine": 2, "flaw": -2, "flawed": -2, "fool": -2,
	"fraud": -4, "free": 1, "freedom": 2, "friendly": 2, "frightening": -3,
	"frustrated": -2, "frustrating": -2, "fun": 4, "funny": 4, "gain": 2,
	"generous": 2, "genius": 3, "glad": 3, "good": 3, "great": 3,
	"greed": -3, "growth": 2, "happy": 3, "harm": -2, "harmful": -2,
	"hate": -3, "help": 2, "helpful": 2, "hoax": -2, "hope": 2,
	"hopeful": 2, "hopes": 2, "horrible": -3, "hurt": -2, "ignore": -1,
	"illegal": -3, "impressive": 3, "improve": 2, "improved": 2, "improvement": 2,
	"inaccurate": -2, "incredible": 3, "innovation": 1, "innovative": 2, "inspire": 2,
	"inspiring": 3, "interesting": 2, "irresponsible": -2, "jobless": -2, "joy": 3,
	"kill": -3, "killed": -3, "lack": -2, "lawsuit": -2, "lie": -2,
	"lies": -2, "like": 2, "lose": -3, "loss": -3, "lost": -3,
	"love": 3, "loved": 3, "lucky": 3, "mad": -3, "manipulate": -1,
	"manipulation": -1, "misinformation": -2, "mislead": -3, "misleading": -3, "mistake": -2,
	"mistakes": -2, "negative": -2, "nervous": -2, "nice": 3, "nightmare": -3,
	"opportunity": 2, "optimism": 2, "optimistic": 2, "outrage": -3, "pain": -2,
	"panic": -3, "perfect": 3, "pessimistic": -2, "plagiarism": -2, "pleased": 3,
	"popular": 3, "positive": 2, "powerful": 2, "praise": 3, "problem": -2,
	"problems": -2, "profit": 2, "progress": 2, "promise": 1, "promising": 3,
	"protect": 1, "protest": -2, "proud": 2, "punish": -2, "racism": -3,
	"racist": -3, "reject": -1, "rejected": -1, "relief": 1, "remarkable": 2,
	"resign": -1, "risk": -2, "risks": -2, "risky": -2, "sad": -2,
	"safe": 1, "safety": 1, "scam": -2, "scandal": -3, "scared": -2,
	"scary": -2, "secure": 2, "smart": 1, "solution": 1, "solve": 1,
	"steal": -2, "stolen": -2, "strong": 2, "stupid": -2, "success": 2,
	"successful": 3, "suffer": -2, "super": 3, "support": 2, "surprise": 1,
	"surveillance": -1, "terrible": -3, "terrified": -3, "threat": -2, "threaten": -2,
	"threatened": -2, "threats": -2, "trouble": -2, "true": 2, "trust": 1,
	"ugly": -3, "uncertain": -1, "uncertainty": -1, "unemployment": -2, "unfair": -2,
	"useful": 2, "useless": -2, "victim": -3, "violence": -3, "vulnerable": -2,
	"war": -2, "warn": -2, "warned": -2, "warning": -3, "warnings": -3,
	"weak": -2, "win": 4, "winner": 4, "wonderful": 4, "worried": -3,
	"worry": -3, "worse": -3, "worst": -3, "wow": 4, "wrong": -2,
}

// bingPositive and bingNegative are a subset of the Bing Liu opinion lexicon.
var bingPositive = []string{
	"accomplish", "accurate", "achievement", "admire", "advanced", "advantage", "amazing",
	"appreciate", "awesome", "benefit", "best", "better", "boost", "breakthrough",
	"brilliant", "capable", "clear", "clever", "comfortable", "convenient", "creative",
	"delight", "easy", "effective", "efficient", "elegant", "enjoy", "enthusiastic",
	"excellent", "exciting", "fair", "fantastic", "fast", "fine", "free", "friendly",
	"gain", "generous", "genius", "good", "great", "happy", "helpful", "honest",
	"impressive", "improve", "improved", "improvement", "incredible", "innovative",
	"inspiring", "interesting", "intelligent", "love", "lucky", "nice", "optimistic",
	"outstanding", "perfect", "pleased", "popular", "positive", "powerful", "praise",
	"productive", "profit", "progress", "promising", "proud", "reliable", "remarkable",
	"rich", "safe", "secure", "smart", "smooth", "strong", "success", "successful",
	"super", "support", "thrilled", "trust", "useful", "valuable", "win", "wonderful",
	"work", "worth",
}

var bingNegative = []string{
	"abuse", "afraid", "alarming", "angry", "annoying", "anxiety", "anxious", "awful",
	"bad", "ban", "biased", "blame", "boring", "broken", "bug", "catastrophe", "chaos",
	"cheat", "cheating", "complaint", "concern", "concerns", "confused", "controversial",
	"crash", "crazy", "crime", "crisis", "critical", "criticism", "cruel", "damage",
	"danger", "dangerous", "dead", "death", "deceptive", "decline", "difficult",
	"disappointing", "disaster", "disinformation", "doubt", "error", "fail", "failed",
	"failure", "fake", "false", "fear", "flaw", "flawed", "fraud", "frightening",
	"frustrating", "harm", "harmful", "hate", "horrible", "hurt", "illegal", "inaccurate",
	"issue", "issues", "kill", "lack", "lawsuit", "lie", "lies", "lose", "loss", "lost",
	"misinformation", "misleading", "mistake", "negative", "nightmare", "outrage",
	"panic", "plagiarism", "problem", "problems", "racist", "risk", "risks", "risky",
	"sad", "scam", "scandal", "scary", "slow", "steal", "stupid", "suffer", "terrible",
	"threat", "threaten", "threats", "trouble", "ugly", "unfair", "unemployment",
	"useless", "victim", "vulnerable", "warning", "weak", "worried", "worry", "worse",
	"worst", "wrong",
}

// marketWords are the bullish (positive) and bearish (negative) keyword
// weights used for financial coverage. Phrases match adjacent tokens.
var marketWords = map[string]float64{
	"bullish": 0.7, "rally": 0.6, "surge": 0.7, "upbeat": 0.5,
	"positive": 0.4, "growth": 0.4, "upgrade": 0.6, "outperform": 0.6,
	"buy": 0.5, "strong": 0.4, "recovery": 0.5, "breakout": 0.6,
	"record high": 0.7, "all time high": 0.7, "beat": 0.5,
	"exceeds": 0.5, "beats estimate": 0.6, "expansion": 0.4,
	"profit": 0.3, "dividend": 0.4, "accumulate": 0.5,

	"bearish": -0.7, "crash": -0.8, "plunge": -0.7, "slump": -0.6,
	"negative": -0.4, "downgrade": -0.6, "underperform": -0.6,
	"sell": -0.5, "weak": -0.4, "decline": -0.5, "loss": -0.4,
	"selloff": -0.7, "fall": -0.4, "correction": -0.5,
	"default": -0.7, "fraud": -0.8, "scam": -0.8, "investigation": -0.5,
	"cut": -0.3, "miss": -0.5, "warning": -0.5, "concern": -0.3,
}

func bingWords() map[string]float64 {
	out := make(map[string]float64, len(bingPositive)+len(bingNegative))
	for _, w := range bingPositive {
		out[w] = 1
	}
	for _, w := range bingNegative {
		out[w] = -1
	}
	return out
}

// builtinLexicon returns a fresh copy of the dictionary for method.
func builtinLexicon(m Method) map[string]float64 {
	var src map[string]float64
	switch m {
	case MethodAFINN:
		src = afinnWords
	case MethodBing:
		return bingWords()
	case MethodMarket:
		src = marketWords
	default:
		return nil
	}
	out := make(map[string]float64, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// LexiconFile is the YAML layout of a custom lexicon:
//
//	words:
//	  hallucinate: -2
//	  breakthrough: 3
type LexiconFile struct {
	Words map[string]float64 `yaml:"words"`
}

// LoadLexicon reads a YAML lexicon file. Keys are lowercased.
func LoadLexicon(path string) (map[string]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon %s: %w", path, err)
	}
	var lf LexiconFile
	if err := yaml.Unmarshal(data, &lf); err != nil {
		return nil, fmt.Errorf("parse lexicon %s: %w", path, err)
	}
	out := make(map[string]float64, len(lf.Words))
	for w, v := range lf.Words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			out[w] = v
		}
	}
	return out, nil
}
