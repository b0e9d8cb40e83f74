package pantry

// Recipe is a named dish and the ingredients it requires. Ingredients are
// exact tokens: "五花肉" and "猪肉" never match each other.
type Recipe struct {
	Name        string   `json:"name"`
	Ingredients []string `json:"ingredients"`
}

// BuiltinRecipes is the recipe book every user starts with.
var BuiltinRecipes = []Recipe{
	{"番茄炒蛋", []string{"番茄", "鸡蛋"}},
	{"青椒肉丝", []string{"青椒", "猪肉", "生抽", "淀粉"}},
	{"红烧肉的家常做法", []string{"五花肉", "生姜", "大葱", "八角", "香叶", "桂皮", "老抽", "生抽", "冰糖"}},
	{"家常菜-荷塘小炒", []string{"荷兰豆", "胡萝卜", "木耳", "莲藕", "水淀粉", "葱末", "葱花"}},
	{"宫保鸡丁", []string{"鸡胸肉", "花生米", "干辣椒", "花椒", "大葱", "生抽", "醋", "白糖"}},
	{"鱼香肉丝", []string{"猪肉", "木耳", "胡萝卜", "青椒", "郫县豆瓣酱", "醋", "白糖"}},
	{"麻婆豆腐", []string{"豆腐", "牛肉末", "郫县豆瓣酱", "花椒", "大蒜"}},
	{"糖醋里脊", []string{"猪里脊", "鸡蛋", "淀粉", "番茄酱", "白糖", "醋"}},
	{"红烧排骨", []string{"排骨", "生姜", "大葱", "老抽", "生抽", "冰糖"}},
	{"回锅肉", []string{"五花肉", "青蒜", "郫县豆瓣酱", "生姜"}},
	{"可乐鸡翅", []string{"鸡翅", "可乐", "生姜", "生抽"}},
	{"土豆丝", []string{"土豆", "青椒", "醋", "大蒜"}},
	{"地三鲜", []string{"土豆", "茄子", "青椒", "大蒜", "生抽"}},
	{"蒜蓉西兰花", []string{"西兰花", "大蒜"}},
	{"清炒小白菜", []string{"小白菜", "大蒜"}},
	{"手撕包菜", []string{"包菜", "干辣椒", "大蒜", "醋"}},
	{"西红柿鸡蛋汤", []string{"番茄", "鸡蛋", "葱花"}},
	{"紫菜蛋花汤", []string{"紫菜", "鸡蛋", "虾皮", "葱花"}},
	{"冬瓜排骨汤", []string{"冬瓜", "排骨", "生姜"}},
	{"皮蛋瘦肉粥", []string{"大米", "皮蛋", "猪肉", "生姜"}},
	{"小米粥", []string{"小米"}},
	{"蛋炒饭", []string{"米饭", "鸡蛋", "葱花"}},
	{"扬州炒饭", []string{"米饭", "鸡蛋", "火腿", "虾仁", "青豆", "胡萝卜"}},
	{"葱油拌面", []string{"面条", "小葱", "生抽", "老抽", "白糖"}},
	{"番茄鸡蛋面", []string{"面条", "番茄", "鸡蛋"}},
	{"炸酱面", []string{"面条", "猪肉", "黄豆酱", "黄瓜"}},
	{"酸辣土豆丝", []string{"土豆", "干辣椒", "醋"}},
	{"凉拌黄瓜", []string{"黄瓜", "大蒜", "醋", "香油"}},
	{"蒜蓉蒸虾", []string{"虾", "大蒜", "粉丝"}},
	{"清蒸鱼", []string{"鲈鱼", "生姜", "大葱", "蒸鱼豉油"}},
	{"水煮鱼", []string{"草鱼", "豆芽", "干辣椒", "花椒", "郫县豆瓣酱"}},
	{"辣子鸡", []string{"鸡腿", "干辣椒", "花椒", "大蒜"}},
	{"黄焖鸡", []string{"鸡腿", "香菇", "青椒", "生姜", "老抽"}},
	{"咖喱鸡", []string{"鸡腿", "土豆", "胡萝卜", "洋葱", "咖喱块"}},
	{"土豆炖牛肉", []string{"牛肉", "土豆", "胡萝卜", "生姜", "八角"}},
	{"孜然羊肉", []string{"羊肉", "洋葱", "孜然", "辣椒粉"}},
	{"韭菜炒鸡蛋", []string{"韭菜", "鸡蛋"}},
	{"香菇青菜", []string{"香菇", "青菜", "大蒜"}},
	{"蚝油生菜", []string{"生菜", "蚝油", "大蒜"}},
	{"肉末茄子", []string{"茄子", "猪肉", "大蒜", "生抽"}},
	{"麻辣香锅", []string{"土豆", "藕", "午餐肉", "虾", "火锅底料"}},
	{"水果沙拉", []string{"苹果", "香蕉", "草莓", "酸奶"}},
	{"三明治", []string{"吐司", "鸡蛋", "火腿", "生菜"}},
	{"双皮奶", []string{"牛奶", "鸡蛋", "白糖"}},
}

// MergeBook overlays custom recipes on builtin. A custom recipe replaces the
// builtin one of the same name in place; new names are appended in order.
// Neither input is modified.
func MergeBook(builtin, custom []Recipe) []Recipe {
	book := make([]Recipe, len(builtin), len(builtin)+len(custom))
	copy(book, builtin)

	index := make(map[string]int, len(book))
	for i, r := range book {
		index[r.Name] = i
	}
	for _, r := range custom {
		if i, ok := index[r.Name]; ok {
			book[i] = r
			continue
		}
		index[r.Name] = len(book)
		book = append(book, r)
	}
	return book
}
