package jvmgen

// JVM 操作码常量
// 只定义字段初始化与表达式求值需要的操作码
const (
	OpNop = 0x00 // 空操作

	// 常量操作
	OpAconstNull = 0x01 // 将 null 压入栈
	OpIconstM1   = 0x02 // 将 -1 压入栈
	OpIconst0    = 0x03 // 将 0 压入栈
	OpIconst5    = 0x08 // 将 5 压入栈
	OpBipush     = 0x10 // 将单字节常量压入栈
	OpSipush     = 0x11 // 将短整型常量压入栈
	OpLdc        = 0x12 // 将常量池中的项压入栈
	OpLdcW       = 0x13 // 同 ldc，使用宽索引
	OpLdc2W      = 0x14 // 将 long/double 常量压入栈

	// 加载操作
	OpIload  = 0x15
	OpLload  = 0x16
	OpFload  = 0x17
	OpDload  = 0x18
	OpAload  = 0x19
	OpIload0 = 0x1A // iload_0，其后 _1.._3 连续
	OpLload0 = 0x1E
	OpFload0 = 0x22
	OpDload0 = 0x26
	OpAload0 = 0x2A

	// 数组存储
	OpAastore = 0x53

	// 栈操作
	OpPop  = 0x57 // 弹出栈顶元素
	OpDup  = 0x59 // 复制栈顶元素
	OpSwap = 0x5F // 交换栈顶两个元素

	// 算术操作：int/long/float/double 四个变体连续编号
	OpIadd = 0x60
	OpLadd = 0x61
	OpFadd = 0x62
	OpDadd = 0x63
	OpIsub = 0x64
	OpLsub = 0x65
	OpFsub = 0x66
	OpDsub = 0x67
	OpImul = 0x68
	OpLmul = 0x69
	OpFmul = 0x6A
	OpDmul = 0x6B
	OpIdiv = 0x6C
	OpLdiv = 0x6D
	OpFdiv = 0x6E
	OpDdiv = 0x6F
	OpIrem = 0x70
	OpLrem = 0x71
	OpFrem = 0x72
	OpDrem = 0x73
	OpIneg = 0x74
	OpLneg = 0x75
	OpFneg = 0x76
	OpDneg = 0x77

	// 类型转换
	OpI2l = 0x85
	OpI2f = 0x86
	OpI2d = 0x87
	OpL2f = 0x89
	OpL2d = 0x8A
	OpF2d = 0x8D

	// 控制流
	OpReturn = 0xB1 // void 返回

	// 字段操作
	OpGetstatic = 0xB2 // 获取静态字段
	OpPutstatic = 0xB3 // 设置静态字段
	OpGetfield  = 0xB4 // 获取实例字段
	OpPutfield  = 0xB5 // 设置实例字段

	// 方法调用
	OpInvokevirtual = 0xB6 // 调用实例方法
	OpInvokespecial = 0xB7 // 调用构造方法/父类方法/私有方法
	OpInvokestatic  = 0xB8 // 调用静态方法

	// 对象操作
	OpNew            = 0xBB // 创建对象
	OpNewarray       = 0xBC // 创建基本类型数组
	OpAnewarray      = 0xBD // 创建引用类型数组
	OpWide           = 0xC4 // 扩展局部变量索引
	OpMultianewarray = 0xC5 // 创建多维数组
)

// stackEffect 单字节指令对操作数栈深度的影响（以字为单位）。
// 带操作数的指令由 Bytecode 的专用方法计算。
var stackEffect = map[byte]int{
	OpNop:        0,
	OpAconstNull: 1,
	OpAastore:    -3,
	OpPop:        -1,
	OpDup:        1,
	OpSwap:       0,
	OpIadd:       -1, OpLadd: -2, OpFadd: -1, OpDadd: -2,
	OpIsub: -1, OpLsub: -2, OpFsub: -1, OpDsub: -2,
	OpImul: -1, OpLmul: -2, OpFmul: -1, OpDmul: -2,
	OpIdiv: -1, OpLdiv: -2, OpFdiv: -1, OpDdiv: -2,
	OpIrem: -1, OpLrem: -2, OpFrem: -1, OpDrem: -2,
	OpIneg: 0, OpLneg: 0, OpFneg: 0, OpDneg: 0,
	OpI2l:    1,
	OpI2f:    0,
	OpI2d:    1,
	OpL2f:    -1,
	OpL2d:    0,
	OpF2d:    1,
	OpReturn: 0,
}

// StackEffect 返回单字节指令的栈深度变化，未知指令返回 false
func StackEffect(op byte) (int, bool) {
	if op >= OpIconstM1 && op <= OpIconst5 {
		return 1, true
	}
	d, ok := stackEffect[op]
	return d, ok
}
